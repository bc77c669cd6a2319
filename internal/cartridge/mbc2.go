package cartridge

import "github.com/mjstead/dmgcore/pkg/state"

// mbc2 implements the MBC2 banking scheme: a 4-bit ROM bank register
// selected by the address's bit 8 (rather than a separate register
// range), plus a built-in 512x4-bit RAM.
type mbc2 struct {
	rom []byte
	ram []byte // 512 bytes; only the low nibble of each byte is wired

	ramEnable bool
	romBank   uint8 // 4 bits, 0 reads as 1
}

func newMBC2(rom []byte) *mbc2 {
	return &mbc2{rom: rom, ram: make([]byte, 512), romBank: 1}
}

func (m *mbc2) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return readBank(romBank(m.rom, 0), addr)
	}
	bank := m.romBank
	if bank == 0 {
		bank = 1
	}
	return readBank(romBank(m.rom, int(bank)), addr-0x4000)
}

func (m *mbc2) WriteROM(addr uint16, value uint8) {
	if addr >= 0x4000 {
		return
	}
	// Bit 8 of the address distinguishes a RAM-enable write (0) from a
	// ROM-bank-select write (1).
	if addr&0x0100 == 0 {
		m.ramEnable = value&0x0F == 0x0A
	} else {
		bank := value & 0x0F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	}
}

func (m *mbc2) ReadRAM(addr uint16) uint8 {
	if !m.ramEnable {
		return 0xFF
	}
	off := int(addr-0xA000) % len(m.ram)
	return m.ram[off] | 0xF0
}

func (m *mbc2) WriteRAM(addr uint16, value uint8) bool {
	if !m.ramEnable {
		return false
	}
	off := int(addr-0xA000) % len(m.ram)
	m.ram[off] = value & 0x0F
	return true
}

var _ state.Stater = (*mbc2)(nil)

func (m *mbc2) Save(b *state.Buffer) {
	b.WriteBool(m.ramEnable)
	b.Write8(m.romBank)
	b.WriteBytes(m.ram)
}

func (m *mbc2) Load(b *state.Buffer) {
	m.ramEnable = b.ReadBool()
	m.romBank = b.Read8()
	b.ReadBytes(m.ram)
}
