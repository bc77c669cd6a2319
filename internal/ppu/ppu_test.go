package ppu

import (
	"testing"

	"github.com/mjstead/dmgcore/internal/interrupts"
	"github.com/mjstead/dmgcore/pkg/state"
	"github.com/stretchr/testify/assert"
)

func newTestPPU() (*PPU, *interrupts.Service) {
	irq := interrupts.NewService()
	irq.Write(interrupts.EnableRegister, 0xFF)
	return New(irq), irq
}

func TestVRAMLockedDuringModeVRAM(t *testing.T) {
	p, _ := newTestPPU()
	p.setMode(ModeVRAM)
	p.Write(0x8000, 0x11)
	assert.Equal(t, uint8(0xFF), p.Read(0x8000), "VRAM should be locked during mode 3")

	p.setMode(ModeHBlank)
	p.Write(0x8000, 0x11)
	assert.Equal(t, uint8(0x11), p.Read(0x8000))
}

func TestOAMLockedDuringModeOAMAndVRAM(t *testing.T) {
	p, _ := newTestPPU()
	p.setMode(ModeOAM)
	assert.Equal(t, uint8(0xFF), p.Read(0xFE00))
	p.setMode(ModeVRAM)
	assert.Equal(t, uint8(0xFF), p.Read(0xFE00))
	p.setMode(ModeHBlank)
	p.Write(0xFE00, 0x22)
	assert.Equal(t, uint8(0x22), p.Read(0xFE00))
}

func TestRawAccessBypassesLockout(t *testing.T) {
	p, _ := newTestPPU()
	p.setMode(ModeVRAM)
	p.WriteRaw(0x8000, 0x55)
	assert.Equal(t, uint8(0x55), p.ReadRaw(0x8000))
}

func TestTickTAdvancesThroughOAMVRAMHBlank(t *testing.T) {
	p, irq := newTestPPU()
	irq.Clear(interrupts.VBlankFlag)

	for i := 0; i < 80; i++ {
		p.TickT()
	}
	assert.Equal(t, ModeVRAM, p.mode)

	for i := 0; i < 172; i++ {
		p.TickT()
	}
	assert.Equal(t, ModeHBlank, p.mode)
}

func TestVBlankRequestedAtLine144(t *testing.T) {
	p, irq := newTestPPU()
	totalDotsPerLine := 456
	for line := 0; line < 144; line++ {
		for i := 0; i < totalDotsPerLine; i++ {
			p.TickT()
		}
	}
	assert.True(t, irq.Pending())
	assert.True(t, p.HasFrame())
	p.ClearFrame()
	assert.False(t, p.HasFrame())
}

func TestDisablingLCDResetsToHBlankAndLine0(t *testing.T) {
	p, _ := newTestPPU()
	p.ly = 50
	p.Write(0xFF40, 0x00) // disable LCD
	assert.Equal(t, uint8(0), p.ly)
	assert.Equal(t, ModeHBlank, p.mode)
}

func TestSaveLoadRoundTripsVRAMAndRegisters(t *testing.T) {
	p, _ := newTestPPU()
	p.setMode(ModeHBlank)
	p.WriteRaw(0x8000, 0x42)
	p.Write(0xFF47, 0x1B)

	buf := state.New()
	p.Save(buf)

	other, _ := newTestPPU()
	other.Load(buf)
	assert.Equal(t, uint8(0x42), other.ReadRaw(0x8000))
	assert.Equal(t, uint8(0x1B), other.Read(0xFF47))
}
