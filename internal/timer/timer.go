// Package timer implements the DIV/TIMA/TMA/TAC timer. DIV is the upper
// byte of a free-running 16-bit counter; TIMA increments on a falling
// edge of a TAC-selected bit of that counter, reloading from TMA and
// requesting an interrupt four T-cycles after it overflows.
//
// It is ticked one T-cycle at a time from the driver's explicit
// per-cycle loop rather than through a deferred event scheduler.
package timer

import (
	"github.com/mjstead/dmgcore/internal/interrupts"
	"github.com/mjstead/dmgcore/pkg/state"
)

// selectBits maps the two TAC clock-select bits to the bit of the
// internal counter whose falling edge clocks TIMA.
var selectBits = [4]uint8{9, 3, 5, 7}

// Controller is the DMG timer.
type Controller struct {
	internal uint16 // free-running 16-bit counter; DIV is its high byte
	tima     uint8
	tma      uint8
	tac      uint8 // bits 0-1 clock select, bit 2 enable

	// reloadDelay counts down the 4 T-cycles between a TIMA overflow and
	// the TMA reload + interrupt request; 0 means no reload pending.
	reloadDelay  int
	reloading    bool // true from a TIMA overflow until the delayed reload completes
	reloadCancel bool

	irq *interrupts.Service
}

// NewController returns a timer with the internal counter at its
// post-boot value.
func NewController(irq *interrupts.Service) *Controller {
	return &Controller{internal: 0xABCC, irq: irq}
}

func (c *Controller) enabled() bool { return c.tac&0x04 != 0 }

func (c *Controller) selectedBit() bool {
	return c.internal&(1<<selectBits[c.tac&0x03]) != 0
}

// TickT advances the timer by one T-cycle.
func (c *Controller) TickT() {
	prevBit := c.enabled() && c.selectedBit()

	c.internal++

	if c.reloadDelay > 0 {
		c.reloadDelay--
		if c.reloadDelay == 0 {
			if !c.reloadCancel {
				c.tima = c.tma
				c.irq.Request(interrupts.TimerFlag)
			}
			c.reloadCancel = false
			c.reloading = false
		}
	}

	newBit := c.enabled() && c.selectedBit()
	if prevBit && !newBit {
		c.incrementTIMA()
	}
}

func (c *Controller) incrementTIMA() {
	c.tima++
	if c.tima == 0 {
		c.reloadDelay = 4
		c.reloading = true
	}
}

// Read returns the value of DIV, TIMA, TMA, or TAC.
func (c *Controller) Read(address uint16) uint8 {
	switch address {
	case 0xFF04:
		return uint8(c.internal >> 8)
	case 0xFF05:
		return c.tima
	case 0xFF06:
		return c.tma
	case 0xFF07:
		return c.tac | 0xF8
	}
	return 0xFF
}

// Write handles writes to DIV, TIMA, TMA, and TAC, including the TIMA
// obscure behavior (a DIV write can itself clock TIMA) and TAC
// clock-select changes that can spuriously clock TIMA mid-write.
func (c *Controller) Write(address uint16, value uint8) {
	switch address {
	case 0xFF04:
		prevBit := c.enabled() && c.selectedBit()
		c.internal = 0
		if prevBit {
			c.incrementTIMA()
		}
	case 0xFF05:
		if c.reloading {
			// A write to TIMA during the reload window keeps the written
			// value and cancels the pending TMA reload and interrupt.
			c.tima = value
			c.reloadCancel = true
		} else {
			c.tima = value
			if c.reloadDelay > 0 {
				c.reloadDelay = 0
			}
		}
	case 0xFF06:
		c.tma = value
		if c.reloading {
			c.tima = value
		}
	case 0xFF07:
		prevBit := c.enabled() && c.selectedBit()
		c.tac = value & 0x07
		newBit := c.enabled() && c.selectedBit()
		if prevBit && !newBit {
			c.incrementTIMA()
		}
	}
}

var _ state.Stater = (*Controller)(nil)

func (c *Controller) Save(b *state.Buffer) {
	b.Write16(c.internal)
	b.Write8(c.tima)
	b.Write8(c.tma)
	b.Write8(c.tac)
	b.Write32(uint32(c.reloadDelay))
	b.WriteBool(c.reloading)
	b.WriteBool(c.reloadCancel)
}

func (c *Controller) Load(b *state.Buffer) {
	c.internal = b.Read16()
	c.tima = b.Read8()
	c.tma = b.Read8()
	c.tac = b.Read8()
	c.reloadDelay = int(b.Read32())
	c.reloading = b.ReadBool()
	c.reloadCancel = b.ReadBool()
}
