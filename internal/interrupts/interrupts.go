// Package interrupts holds the IE/IF registers and arbitrates dispatch
// priority between the five DMG interrupt sources.
package interrupts

import (
	"fmt"

	"github.com/mjstead/dmgcore/pkg/state"
)

// Vector is the entry point the CPU jumps to when servicing an interrupt.
type Vector = uint16

const (
	VBlankVector Vector = 0x0040
	LCDVector    Vector = 0x0048
	TimerVector  Vector = 0x0050
	SerialVector Vector = 0x0058
	JoypadVector Vector = 0x0060
)

// Flag is the bit index of an interrupt source within IE/IF.
type Flag = uint8

const (
	VBlankFlag Flag = 0
	LCDFlag    Flag = 1
	TimerFlag  Flag = 2
	SerialFlag Flag = 3
	JoypadFlag Flag = 4
)

var vectors = [5]Vector{VBlankVector, LCDVector, TimerVector, SerialVector, JoypadVector}

const (
	// FlagRegister is the address of IF (0xFF0F).
	FlagRegister uint16 = 0xFF0F
	// EnableRegister is the address of IE (0xFFFF).
	EnableRegister uint16 = 0xFFFF
)

// Service holds IE, IF, and the interrupt master enable flag (IME), and
// arbitrates priority between sources: the lowest-numbered pending,
// enabled interrupt is serviced first.
type Service struct {
	Flag   uint8
	Enable uint8

	// IME is the interrupt master enable flag.
	IME bool
	// EIPending delays IME's rise by one instruction, as EI specifies.
	EIPending bool
}

// NewService returns a Service with interrupts disabled and no pending
// requests, matching post-boot hardware state.
func NewService() *Service {
	return &Service{}
}

// Request raises the IF bit for flag. Requests persist until explicitly
// cleared, even if IME is disabled or IE does not enable the source.
func (s *Service) Request(flag Flag) {
	s.Flag |= 1 << flag
}

// Clear lowers the IF bit for flag.
func (s *Service) Clear(flag Flag) {
	s.Flag &^= 1 << flag
}

// Pending reports whether any enabled interrupt source has a request
// outstanding, regardless of IME — used to wake the CPU from halt.
func (s *Service) Pending() bool {
	return s.Enable&s.Flag&0x1F != 0
}

// NextVector returns the vector and flag bit of the highest-priority
// pending, enabled interrupt. Must only be called when Pending is true.
func (s *Service) NextVector() (Vector, Flag) {
	active := s.Enable & s.Flag & 0x1F
	for bit := Flag(0); bit < 5; bit++ {
		if active&(1<<bit) != 0 {
			return vectors[bit], bit
		}
	}
	panic("interrupts: NextVector called with no pending interrupt")
}

// IMEEnabled reports whether the interrupt master enable flag is set.
func (s *Service) IMEEnabled() bool { return s.IME }

// SetIME sets the interrupt master enable flag directly (used by RETI
// and the delayed EI effect, and cleared on interrupt dispatch).
func (s *Service) SetIME(v bool) { s.IME = v }

// EIPendingFlag reports whether EI's one-instruction-delayed IME rise is
// still outstanding.
func (s *Service) EIPendingFlag() bool { return s.EIPending }

// SetEIPending arms or disarms EI's delayed IME rise.
func (s *Service) SetEIPending(v bool) { s.EIPending = v }

// Read returns the value of IF or IE. Unused IF bits read as 1.
func (s *Service) Read(address uint16) uint8 {
	switch address {
	case FlagRegister:
		return s.Flag&0x1F | 0xE0
	case EnableRegister:
		return s.Enable
	}
	panic(fmt.Sprintf("interrupts: illegal read from address %04X", address))
}

// Write sets IF or IE.
func (s *Service) Write(address uint16, value uint8) {
	switch address {
	case FlagRegister:
		s.Flag = value
	case EnableRegister:
		s.Enable = value
	default:
		panic(fmt.Sprintf("interrupts: illegal write to address %04X", address))
	}
}

var _ state.Stater = (*Service)(nil)

func (s *Service) Save(b *state.Buffer) {
	b.Write8(s.Flag)
	b.Write8(s.Enable)
	b.WriteBool(s.IME)
	b.WriteBool(s.EIPending)
}

func (s *Service) Load(b *state.Buffer) {
	s.Flag = b.Read8()
	s.Enable = b.Read8()
	s.IME = b.ReadBool()
	s.EIPending = b.ReadBool()
}
