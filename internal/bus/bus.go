// Package bus implements the Game Boy's 64KiB address space: the
// single dispatch point the CPU and DMA controller read and write
// through, fanning I/O register accesses out to the owning component.
//
// Dispatch is an address switch over the Bus's own fields, with
// no package-level hardware-register registry and no CGB-only ranges
// (VRAM/WRAM banking, HDMA, key0/key1).
package bus

import (
	"github.com/mjstead/dmgcore/internal/apu"
	"github.com/mjstead/dmgcore/internal/cartridge"
	"github.com/mjstead/dmgcore/internal/dma"
	"github.com/mjstead/dmgcore/internal/interrupts"
	"github.com/mjstead/dmgcore/internal/joypad"
	"github.com/mjstead/dmgcore/internal/ppu"
	"github.com/mjstead/dmgcore/internal/timer"
	"github.com/mjstead/dmgcore/pkg/state"
)

// serialTransferCycles is the T-cycle delay an internal-clock serial
// transfer takes to complete. Real hardware shifts one bit per 512
// T-cycles (4096 for a full byte); exact cable timing doesn't matter
// since no link partner is ever connected, only that SB is captured
// and the Serial interrupt eventually fires.
const serialTransferCycles = 4096

// BootROM is an optional 256-byte DMG boot ROM mapped at 0x0000-0x00FF
// until the game writes to 0xFF50.
type BootROM [256]byte

// Bus is the DMG 64KiB address space.
type Bus struct {
	cart *cartridge.Cartridge
	ppu  *ppu.PPU
	apu  *apu.APU
	tmr  *timer.Controller
	pad  *joypad.State
	irq  *interrupts.Service
	dma  *dma.Controller

	wram [0x2000]uint8 // fixed 2 banks, DMG has no WRAM banking
	hram [0x7F]uint8

	boot       *BootROM
	bootActive bool

	sb uint8
	sc uint8

	serialCountdown int
	serialOut       []uint8
}

// New wires a Bus to its components. irq must be the same Service
// instance passed to tmr, pad, and any interrupt-raising component.
func New(cart *cartridge.Cartridge, p *ppu.PPU, a *apu.APU, tmr *timer.Controller, pad *joypad.State, irq *interrupts.Service) *Bus {
	b := &Bus{cart: cart, ppu: p, apu: a, tmr: tmr, pad: pad, irq: irq}
	b.dma = dma.New(b)
	return b
}

// AttachBootROM installs a boot ROM that shadows 0x0000-0x00FF until
// the game disables it by writing to 0xFF50.
func (b *Bus) AttachBootROM(rom *BootROM) {
	b.boot = rom
	b.bootActive = rom != nil
}

// Tick advances every ticked component by one M-cycle, in the fixed
// order timer (four T-cycles), DMA, then PPU and APU one T-cycle each,
// four times over, then the serial transfer countdown.
func (b *Bus) Tick() {
	b.tmr.TickT()
	b.tmr.TickT()
	b.tmr.TickT()
	b.tmr.TickT()
	b.dma.Tick()
	for i := 0; i < 4; i++ {
		b.ppu.TickT()
		b.apu.TickT()
	}
	b.tickSerial()
}

func (b *Bus) tickSerial() {
	if b.serialCountdown <= 0 {
		return
	}
	b.serialCountdown -= 4
	if b.serialCountdown <= 0 {
		b.serialCountdown = 0
		b.sc &^= 0x80
		b.irq.Request(interrupts.SerialFlag)
	}
}

// SerialOut returns every byte written to SB while SC requested an
// internal-clock transfer, in order. Hosts use this to capture test
// ROM output (e.g. Blargg's "Passed"/"Failed" banners).
func (b *Bus) SerialOut() []uint8 { return b.serialOut }

// ClearSerialOut discards accumulated serial output.
func (b *Bus) ClearSerialOut() { b.serialOut = nil }

// Read returns the byte at addr, applying PPU VRAM/OAM lockout and the
// HRAM-only restriction while a DMA transfer is active.
func (b *Bus) Read(addr uint16) uint8 {
	if b.dma.Active() && !(addr >= 0xFF80 && addr <= 0xFFFE) {
		return 0xFF
	}
	return b.read(addr)
}

func (b *Bus) read(addr uint16) uint8 {
	switch {
	case b.bootActive && addr < 0x0100:
		return b.boot[addr]
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr < 0xA000:
		return b.ppu.Read(addr)
	case addr < 0xC000:
		return b.cart.Read(addr)
	case addr < 0xE000:
		return b.wram[addr-0xC000]
	case addr < 0xFE00:
		return b.wram[addr-0xE000]
	case addr < 0xFEA0:
		return b.ppu.Read(addr)
	case addr < 0xFF00:
		return 0xFF
	case addr < 0xFF80:
		return b.readIO(addr)
	case addr < 0xFFFF:
		return b.hram[addr-0xFF80]
	default:
		return b.irq.Read(addr)
	}
}

// Write stores value at addr, applying the same DMA lockout as Read
// (writes to anything but HRAM are simply dropped during a transfer).
func (b *Bus) Write(addr uint16, value uint8) {
	if b.dma.Active() && !(addr >= 0xFF80 && addr <= 0xFFFE) {
		return
	}
	b.write(addr, value)
}

func (b *Bus) write(addr uint16, value uint8) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr < 0xA000:
		b.ppu.Write(addr, value)
	case addr < 0xC000:
		b.cart.Write(addr, value)
	case addr < 0xE000:
		b.wram[addr-0xC000] = value
	case addr < 0xFE00:
		b.wram[addr-0xE000] = value
	case addr < 0xFEA0:
		b.ppu.Write(addr, value)
	case addr < 0xFF00:
		// prohibited region, writes are dropped
	case addr < 0xFF80:
		b.writeIO(addr, value)
	case addr < 0xFFFF:
		b.hram[addr-0xFF80] = value
	default:
		b.irq.Write(addr, value)
	}
}

func (b *Bus) readIO(addr uint16) uint8 {
	switch {
	case addr == 0xFF00:
		return b.pad.Read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return b.sc | 0x7E
	case addr >= 0xFF04 && addr <= 0xFF07:
		return b.tmr.Read(addr)
	case addr == 0xFF0F:
		return b.irq.Read(addr)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		return b.apu.Read(addr)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		if addr == 0xFF46 {
			return b.dma.Read()
		}
		return b.ppu.Read(addr)
	case addr == 0xFF50:
		if b.bootActive {
			return 0xFE
		}
		return 0xFF
	}
	return 0xFF
}

func (b *Bus) writeIO(addr uint16, value uint8) {
	switch {
	case addr == 0xFF00:
		b.pad.Write(value)
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		b.sc = value & 0x83
		if value&0x81 == 0x81 {
			b.serialOut = append(b.serialOut, b.sb)
			b.serialCountdown = serialTransferCycles
		}
	case addr >= 0xFF04 && addr <= 0xFF07:
		b.tmr.Write(addr, value)
	case addr == 0xFF0F:
		b.irq.Write(addr, value)
	case addr >= 0xFF10 && addr <= 0xFF3F:
		b.apu.Write(addr, value)
	case addr >= 0xFF40 && addr <= 0xFF4B:
		if addr == 0xFF46 {
			b.dma.Write(value)
			return
		}
		b.ppu.Write(addr, value)
	case addr == 0xFF50:
		if value != 0 {
			b.bootActive = false
		}
	}
}

// ReadRaw and WriteRaw implement dma.RawBus: the DMA engine bypasses
// the VRAM/OAM PPU lockout (the engine is what's allowed to touch OAM
// during its own transfer) but is otherwise routed like any other
// access.
func (b *Bus) ReadRaw(addr uint16) uint8 {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		return b.ppu.ReadRaw(addr)
	case addr >= 0xFE00 && addr < 0xFEA0:
		return b.ppu.ReadRaw(addr)
	default:
		return b.read(addr)
	}
}

func (b *Bus) WriteRaw(addr uint16, value uint8) {
	switch {
	case addr >= 0x8000 && addr < 0xA000:
		b.ppu.WriteRaw(addr, value)
	case addr >= 0xFE00 && addr < 0xFEA0:
		b.ppu.WriteRaw(addr, value)
	default:
		b.write(addr, value)
	}
}

var _ state.Stater = (*Bus)(nil)

func (b *Bus) Save(s *state.Buffer) {
	s.WriteBytes(b.wram[:])
	s.WriteBytes(b.hram[:])
	s.Write8(b.sb)
	s.Write8(b.sc)
	s.Write32(uint32(b.serialCountdown))
	s.WriteBool(b.bootActive)
	b.dma.Save(s)
}

func (b *Bus) Load(s *state.Buffer) {
	s.ReadBytes(b.wram[:])
	s.ReadBytes(b.hram[:])
	b.sb = s.Read8()
	b.sc = s.Read8()
	b.serialCountdown = int(s.Read32())
	b.bootActive = s.ReadBool()
	b.dma.Load(s)
}
