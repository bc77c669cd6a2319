// Package joypad implements the P1 (0xFF00) input register: it merges
// host-reported button state with the row the game has selected, and
// raises a joypad interrupt on an unpressed-to-pressed edge in a
// currently-selected row.
package joypad

import (
	"github.com/mjstead/dmgcore/internal/interrupts"
	"github.com/mjstead/dmgcore/pkg/state"
)

// Button identifies a physical DMG button. Values are chosen so the
// lower nibble maps directly onto the P1 action/direction bit layout.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonRight
	ButtonLeft
	ButtonUp
	ButtonDown
)

// State is the joypad register and current button mask.
type State struct {
	selector uint8 // bits 4-5 of P1, as last written (active low)
	pressed  uint8 // bit set == button currently held

	irq *interrupts.Service
}

// New returns a joypad with no row selected and no buttons held.
func New(irq *interrupts.Service) *State {
	return &State{selector: 0x30, irq: irq}
}

// Read returns the current value of P1: bits 0-3 reflect the unpressed
// (active-low) state of whichever row(s) are selected, bits 4-5 echo
// the selector, and bits 6-7 read as 1.
func (s *State) Read() uint8 {
	lower := uint8(0x0F)
	if s.selector&0x10 == 0 { // direction row selected
		lower &= ^(s.pressed >> 4)
	}
	if s.selector&0x20 == 0 { // action row selected
		lower &= ^(s.pressed & 0x0F)
	}
	return 0xC0 | s.selector | lower
}

// Write updates the row selector (bits 4-5); all other bits are
// read-only and ignored.
func (s *State) Write(value uint8) {
	s.selector = (s.selector & 0xCF) | (value & 0x30)
}

// Update reports a button's new pressed state, requesting a joypad
// interrupt on an unpressed-to-pressed transition while the button's
// row is selected, matching real hardware's edge-triggered behavior.
func (s *State) Update(button Button, pressed bool) {
	wasPressed := s.pressed&uint8(button) != 0
	if pressed {
		s.pressed |= uint8(button)
	} else {
		s.pressed &^= uint8(button)
		return
	}
	if wasPressed {
		return
	}

	isAction := button <= ButtonStart
	rowSelected := (isAction && s.selector&0x20 == 0) || (!isAction && s.selector&0x10 == 0)
	if rowSelected {
		s.irq.Request(interrupts.JoypadFlag)
	}
}

var _ state.Stater = (*State)(nil)

func (s *State) Save(b *state.Buffer) {
	b.Write8(s.selector)
	b.Write8(s.pressed)
}

func (s *State) Load(b *state.Buffer) {
	s.selector = b.Read8()
	s.pressed = b.Read8()
}
