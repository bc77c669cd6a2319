package joypad

import (
	"testing"

	"github.com/mjstead/dmgcore/internal/interrupts"
	"github.com/stretchr/testify/assert"
)

func newTestState() (*State, *interrupts.Service) {
	irq := interrupts.NewService()
	irq.Write(interrupts.EnableRegister, 0xFF)
	return New(irq), irq
}

func TestReadReflectsSelectedRow(t *testing.T) {
	s, _ := newTestState()
	s.Update(ButtonA, true)
	s.Update(ButtonUp, true)

	s.Write(0x10) // bit5 low: action row selected
	assert.Equal(t, uint8(0x0E), s.Read()&0x0F, "A should read as pressed (bit 0 low)")

	s.Write(0x20) // bit4 low: direction row selected
	assert.Equal(t, uint8(0x0B), s.Read()&0x0F, "Up should read as pressed (bit 2 low)")
}

func TestUpdateRequestsInterruptOnPressEdge(t *testing.T) {
	s, irq := newTestState()
	s.Write(0x10) // action row selected

	s.Update(ButtonA, true)
	assert.True(t, irq.Pending())

	irq.Clear(interrupts.JoypadFlag)
	s.Update(ButtonA, true) // already pressed, no new edge
	assert.False(t, irq.Pending())
}

func TestUpdateIgnoresUnselectedRow(t *testing.T) {
	s, irq := newTestState()
	s.Write(0x10) // action row selected, direction row not selected

	s.Update(ButtonUp, true)
	assert.False(t, irq.Pending())
}

func TestReleaseClearsBitWithoutInterrupt(t *testing.T) {
	s, irq := newTestState()
	s.Write(0x10)
	s.Update(ButtonA, true)
	irq.Clear(interrupts.JoypadFlag)

	s.Update(ButtonA, false)
	assert.False(t, irq.Pending())
	assert.Equal(t, uint8(0x0F), s.Read()&0x0F)
}
