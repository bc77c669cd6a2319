package cartridge

import "github.com/mjstead/dmgcore/pkg/state"

// mbc1 implements the MBC1 banking scheme: a 5-bit primary ROM bank
// register and a 2-bit secondary register that, depending on the
// banking-mode bit, either extends the ROM bank to 7 bits or selects
// one of four 8 KiB RAM banks.
type mbc1 struct {
	rom []byte
	ram []byte

	ramEnable bool
	bank1     uint8 // 5 bits: ROM bank low bits, 0 reads as 1
	bank2     uint8 // 2 bits: RAM bank, or ROM bank high bits in mode 0
	mode      uint8 // 0: bank2 affects 0x4000-0x7FFF only; 1: also 0x0000-0x3FFF and RAM
}

func newMBC1(rom []byte, ramSize int) *mbc1 {
	return &mbc1{rom: rom, ram: make([]byte, ramSize)}
}

func (m *mbc1) romBankLow() int {
	if m.mode == 1 {
		return int(m.bank2) << 5
	}
	return 0
}

func (m *mbc1) romBankHigh() int {
	bank := m.bank1
	if bank == 0 {
		bank = 1
	}
	return int(bank) | int(m.bank2)<<5
}

func (m *mbc1) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return readBank(romBank(m.rom, m.romBankLow()), addr)
	}
	return readBank(romBank(m.rom, m.romBankHigh()), addr-0x4000)
}

func (m *mbc1) WriteROM(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnable = value&0x0F == 0x0A
	case addr < 0x4000:
		bank := value & 0x1F
		m.bank1 = bank
	case addr < 0x6000:
		m.bank2 = value & 0x03
	default:
		m.mode = value & 0x01
	}
}

func (m *mbc1) ramBank() int {
	if m.mode == 1 {
		return int(m.bank2)
	}
	return 0
}

func (m *mbc1) ramOffset(addr uint16) int {
	return m.ramBank()*0x2000 + int(addr-0xA000)
}

func (m *mbc1) ReadRAM(addr uint16) uint8 {
	if !m.ramEnable || len(m.ram) == 0 {
		return 0xFF
	}
	off := m.ramOffset(addr)
	if off >= len(m.ram) {
		return 0xFF
	}
	return m.ram[off]
}

func (m *mbc1) WriteRAM(addr uint16, value uint8) bool {
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

var _ state.Stater = (*mbc1)(nil)

func (m *mbc1) Save(b *state.Buffer) {
	b.WriteBool(m.ramEnable)
	b.Write8(m.bank1)
	b.Write8(m.bank2)
	b.Write8(m.mode)
	b.WriteBytes(m.ram)
}

func (m *mbc1) Load(b *state.Buffer) {
	m.ramEnable = b.ReadBool()
	m.bank1 = b.Read8()
	m.bank2 = b.Read8()
	m.mode = b.Read8()
	b.ReadBytes(m.ram)
}
