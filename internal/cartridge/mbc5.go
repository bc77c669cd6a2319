package cartridge

import "github.com/mjstead/dmgcore/pkg/state"

// mbc5 implements the MBC5 banking scheme: a 9-bit ROM bank register
// split across two write ranges and a 4-bit RAM bank register. Unlike
// MBC1, bank 0 is addressable directly (no forced-to-1 remap) at
// 0x4000-0x7FFF.
type mbc5 struct {
	rom []byte
	ram []byte

	ramEnable bool
	romBank   uint16 // 9 bits
	ramBank   uint8  // 4 bits
}

func newMBC5(rom []byte, ramSize int) *mbc5 {
	return &mbc5{rom: rom, ram: make([]byte, ramSize), romBank: 1}
}

func (m *mbc5) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return readBank(romBank(m.rom, 0), addr)
	}
	return readBank(romBank(m.rom, int(m.romBank)), addr-0x4000)
}

func (m *mbc5) WriteROM(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnable = value&0x0F == 0x0A
	case addr < 0x3000:
		m.romBank = m.romBank&0x100 | uint16(value)
	case addr < 0x4000:
		m.romBank = m.romBank&0x0FF | uint16(value&0x01)<<8
	case addr < 0x6000:
		m.ramBank = value & 0x0F
	}
}

func (m *mbc5) ramOffset(addr uint16) int {
	return int(m.ramBank)*0x2000 + int(addr-0xA000)
}

func (m *mbc5) ReadRAM(addr uint16) uint8 {
	if !m.ramEnable || len(m.ram) == 0 {
		return 0xFF
	}
	off := m.ramOffset(addr)
	if off >= len(m.ram) {
		return 0xFF
	}
	return m.ram[off]
}

func (m *mbc5) WriteRAM(addr uint16, value uint8) bool {
	if !m.ramEnable || len(m.ram) == 0 {
		return false
	}
	off := m.ramOffset(addr)
	if off >= len(m.ram) {
		return false
	}
	m.ram[off] = value
	return true
}

var _ state.Stater = (*mbc5)(nil)

func (m *mbc5) Save(b *state.Buffer) {
	b.WriteBool(m.ramEnable)
	b.Write16(m.romBank)
	b.Write8(m.ramBank)
	b.WriteBytes(m.ram)
}

func (m *mbc5) Load(b *state.Buffer) {
	m.ramEnable = b.ReadBool()
	m.romBank = b.Read16()
	m.ramBank = b.Read8()
	b.ReadBytes(m.ram)
}
