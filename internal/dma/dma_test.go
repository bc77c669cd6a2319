package dma

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBus struct {
	mem [0x10000]uint8
}

func (f *fakeBus) ReadRaw(addr uint16) uint8        { return f.mem[addr] }
func (f *fakeBus) WriteRaw(addr uint16, value uint8) { f.mem[addr] = value }

func TestTransferCopies160BytesOverOneCyclePerTick(t *testing.T) {
	bus := &fakeBus{}
	for i := 0; i < 160; i++ {
		bus.mem[0xC000+i] = uint8(i + 1)
	}

	d := New(bus)
	d.Write(0xC0) // source 0xC000

	assert.True(t, d.Active())
	for i := 0; i < 160; i++ {
		assert.True(t, d.Active())
		d.Tick()
	}
	assert.False(t, d.Active())

	for i := 0; i < 160; i++ {
		assert.Equal(t, uint8(i+1), bus.mem[0xFE00+i])
	}
}

func TestTickIsNoopWhenIdle(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus)
	d.Tick()
	assert.False(t, d.Active())
}

func TestWriteMidTransferRestarts(t *testing.T) {
	bus := &fakeBus{}
	d := New(bus)
	d.Write(0xC0)
	for i := 0; i < 50; i++ {
		d.Tick()
	}
	d.Write(0xD0)
	assert.True(t, d.Active())

	for i := 0; i < 160; i++ {
		d.Tick()
	}
	assert.False(t, d.Active())
}
