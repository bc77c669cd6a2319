// Package dma implements OAM DMA: a write to 0xFF46 starts a 160-byte
// transfer from value*0x100 into OAM (0xFE00-0xFE9F) that runs over the
// following 160 M-cycles, one byte per cycle, driven by the bus's tick
// loop rather than instantaneously.
package dma

import "github.com/mjstead/dmgcore/pkg/state"

// RawBus is the raw memory access the DMA engine copies through; the
// owning bus passes itself so the copy observes the same mapping the
// CPU would (cartridge, VRAM, WRAM all remain valid DMA sources).
type RawBus interface {
	ReadRaw(addr uint16) uint8
	WriteRaw(addr uint16, value uint8)
}

// Controller is the DMA transfer state machine, ticked once per
// M-cycle by the bus.
type Controller struct {
	active    bool
	restarted bool
	cycle     uint16
	source    uint16
	reg       uint8

	bus RawBus
}

// New returns an idle DMA controller.
func New(bus RawBus) *Controller {
	return &Controller{bus: bus}
}

// Read returns the last value written to 0xFF46.
func (d *Controller) Read() uint8 { return d.reg }

// Write starts (or restarts) a transfer from value*0x100.
func (d *Controller) Write(value uint8) {
	d.reg = value
	d.source = uint16(value) << 8
	d.cycle = 0
	d.restarted = d.active
	d.active = true
}

// Active reports whether a transfer is in progress, which the bus uses
// to lock out CPU access to everything but HRAM.
func (d *Controller) Active() bool { return d.active }

// Tick advances the transfer by one M-cycle.
func (d *Controller) Tick() {
	if !d.active {
		return
	}
	if d.cycle >= 160 {
		d.active = false
		d.restarted = false
		return
	}

	src := d.source + d.cycle
	if src >= 0xFE00 && src < 0xFFFE {
		src -= 0x2000 // OAM/HRAM can't source itself; real hardware reads WRAM instead
	}
	d.bus.WriteRaw(0xFE00+d.cycle, d.bus.ReadRaw(src))
	d.cycle++
	if d.cycle >= 160 {
		d.active = false
		d.restarted = false
	}
}

var _ state.Stater = (*Controller)(nil)

func (d *Controller) Save(b *state.Buffer) {
	b.WriteBool(d.active)
	b.WriteBool(d.restarted)
	b.Write16(d.cycle)
	b.Write16(d.source)
	b.Write8(d.reg)
}

func (d *Controller) Load(b *state.Buffer) {
	d.active = b.ReadBool()
	d.restarted = b.ReadBool()
	d.cycle = b.Read16()
	d.source = b.Read16()
	d.reg = b.Read8()
}
