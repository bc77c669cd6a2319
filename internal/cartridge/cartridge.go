package cartridge

import (
	"github.com/mjstead/dmgcore/pkg/state"
)

// Cartridge is a loaded ROM image bound to the memory bank controller
// its header selects. The bus dispatches all 0x0000-0x7FFF and
// 0xA000-0xBFFF accesses here.
type Cartridge struct {
	Header Header
	mbc    MBC
	dirty  bool
}

// New decodes rom's header and constructs the matching MBC. ram, if
// non-nil, seeds cartridge RAM from a previously persisted save (its
// length must match Header.RAMSize or it is ignored).
func New(rom []byte, ram []byte) (*Cartridge, error) {
	h, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	c := &Cartridge{Header: h}
	switch {
	case h.Type == TypeROMOnly:
		c.mbc = newNoMBC(rom)
	case h.Type >= TypeMBC1 && h.Type <= TypeMBC1RAMBattery:
		c.mbc = newMBC1(rom, h.RAMSize)
	case h.Type == TypeMBC2 || h.Type == TypeMBC2Battery:
		c.mbc = newMBC2(rom)
	case h.Type == TypeMBC3TimerBattery || h.Type == TypeMBC3TimerRAMBattery ||
		(h.Type >= TypeMBC3 && h.Type <= TypeMBC3RAMBattery):
		c.mbc = newMBC3(rom, h.RAMSize)
	case h.Type >= TypeMBC5 && h.Type <= TypeMBC5RumbleRAMBattery:
		c.mbc = newMBC5(rom, h.RAMSize)
	default:
		return nil, &ErrUnsupportedCartridge{Reason: "no controller implements this cartridge type"}
	}

	if ram != nil {
		buf := state.FromBytes(ram)
		c.mbc.Load(buf)
	}

	return c, nil
}

// Title returns the ROM's 16-byte header title, cut at its first NUL.
func (c *Cartridge) Title() string { return c.Header.Title }

// Dirty reports whether cartridge RAM has changed since the last
// ClearDirty call, so a host can decide when to persist a save.
func (c *Cartridge) Dirty() bool { return c.dirty }

// ClearDirty resets the dirty flag after the host has persisted RAM.
func (c *Cartridge) ClearDirty() { c.dirty = false }

// Read dispatches an 0x0000-0x7FFF or 0xA000-0xBFFF address to the MBC.
func (c *Cartridge) Read(addr uint16) uint8 {
	if addr < 0x8000 {
		return c.mbc.ReadROM(addr)
	}
	return c.mbc.ReadRAM(addr)
}

// Write dispatches an 0x0000-0x7FFF (bank control) or 0xA000-0xBFFF
// (cartridge RAM) write to the MBC.
func (c *Cartridge) Write(addr uint16, value uint8) {
	if addr < 0x8000 {
		c.mbc.WriteROM(addr, value)
		return
	}
	if c.mbc.WriteRAM(addr, value) {
		c.dirty = true
	}
}

// RAM serializes cartridge RAM (and any MBC RTC/bank state) for
// persistence by the host's save sink. The returned bytes round-trip
// through New's ram parameter.
func (c *Cartridge) RAM() []byte {
	buf := state.New()
	c.mbc.Save(buf)
	return buf.Bytes()
}

var _ state.Stater = (*Cartridge)(nil)

func (c *Cartridge) Save(b *state.Buffer) {
	c.mbc.Save(b)
	b.WriteBool(c.dirty)
}

func (c *Cartridge) Load(b *state.Buffer) {
	c.mbc.Load(b)
	c.dirty = b.ReadBool()
}
