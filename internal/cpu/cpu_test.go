package cpu

import (
	"testing"

	"github.com/mjstead/dmgcore/internal/interrupts"
	"github.com/stretchr/testify/assert"
)

type fakeBus struct {
	mem   [0x10000]uint8
	ticks int
}

func (f *fakeBus) Read(addr uint16) uint8         { return f.mem[addr] }
func (f *fakeBus) Write(addr uint16, value uint8) { f.mem[addr] = value }
func (f *fakeBus) Tick()                          { f.ticks++ }

func newTestCPU(program ...uint8) (*CPU, *fakeBus, *interrupts.Service) {
	bus := &fakeBus{}
	copy(bus.mem[0x0100:], program)
	irq := interrupts.NewService()
	c := NewCPU(bus, irq)
	c.Reset()
	return c, bus, irq
}

func TestResetMatchesPostBootRegisterValues(t *testing.T) {
	c, _, _ := newTestCPU()
	assert.Equal(t, uint8(0x01), c.A)
	assert.Equal(t, uint16(0xFFFE), c.SP)
	assert.Equal(t, uint16(0x0100), c.PC)
}

func TestNOPSpendsOneMCycleAndAdvancesPC(t *testing.T) {
	c, _, _ := newTestCPU(0x00)
	cycles := c.Step()
	assert.Equal(t, 1, cycles)
	assert.Equal(t, uint16(0x0101), c.PC)
}

func TestLDImmediate8(t *testing.T) {
	c, _, _ := newTestCPU(0x3E, 0x42) // LD A,d8
	c.Step()
	assert.Equal(t, uint8(0x42), c.A)
}

func TestLDPairImmediate16(t *testing.T) {
	c, _, _ := newTestCPU(0x21, 0x34, 0x12) // LD HL,0x1234
	cycles := c.Step()
	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0x1234), c.hl())
}

func TestINCSetsZeroAndHalfCarryFlags(t *testing.T) {
	c, _, _ := newTestCPU(0x3C) // INC A
	c.A = 0xFF
	c.Step()
	assert.Equal(t, uint8(0), c.A)
	assert.True(t, c.flag(flagZero))
	assert.True(t, c.flag(flagHalfCarry))
}

func TestLDMemoryHLIndirectWrite(t *testing.T) {
	c, bus, _ := newTestCPU(0x77) // LD (HL),A
	c.A = 0x99
	c.setHL(0xC010)
	c.Step()
	assert.Equal(t, uint8(0x99), bus.mem[0xC010])
}

func TestHaltWakesOnlyWhenInterruptBecomesPending(t *testing.T) {
	c, _, irq := newTestCPU(0x76) // HALT
	c.Step()
	assert.True(t, c.Halted)

	cycles := c.Step()
	assert.Equal(t, 1, cycles)
	assert.True(t, c.Halted, "no interrupt pending yet: HALT keeps idling")

	irq.Write(interrupts.EnableRegister, 0xFF)
	irq.Request(interrupts.VBlankFlag)
	c.Step()
	assert.False(t, c.Halted)
}

func TestInterruptDispatchPushesPCAndJumpsToVector(t *testing.T) {
	c, bus, irq := newTestCPU(0x00)
	irq.SetIME(true)
	irq.Write(interrupts.EnableRegister, 0xFF)
	irq.Request(interrupts.VBlankFlag)
	c.SP = 0xFFFE
	c.PC = 0x0150

	cycles := c.Step()
	assert.Equal(t, 5, cycles)
	assert.Equal(t, interrupts.VBlankVector, c.PC)
	assert.False(t, irq.IMEEnabled())

	lo := bus.mem[0xFFFC]
	hi := bus.mem[0xFFFD]
	assert.Equal(t, uint16(0x0150), uint16(hi)<<8|uint16(lo))
}

func TestPushPop(t *testing.T) {
	c, _, _ := newTestCPU()
	c.SP = 0xFFFE
	c.push(0xBEEF)
	v := c.pop()
	assert.Equal(t, uint16(0xBEEF), v)
	assert.Equal(t, uint16(0xFFFE), c.SP)
}
