package cartridge

import "github.com/mjstead/dmgcore/pkg/state"

// MBC is a memory bank controller: it owns the ROM image and any
// cartridge RAM, and maps CPU-visible addresses onto banked storage.
type MBC interface {
	// ReadROM reads an address in 0x0000-0x7FFF.
	ReadROM(addr uint16) uint8
	// WriteROM handles a write in 0x0000-0x7FFF, which on every MBC is
	// interpreted as a control write (RAM enable, bank select, mode
	// select) rather than a real ROM write.
	WriteROM(addr uint16, value uint8)
	// ReadRAM reads an address in 0xA000-0xBFFF. Returns 0xFF if RAM is
	// absent or disabled.
	ReadRAM(addr uint16) uint8
	// WriteRAM handles a write in 0xA000-0xBFFF. Returns true if the
	// write landed in enabled, present RAM (marking the cartridge dirty).
	WriteRAM(addr uint16, value uint8) bool

	state.Stater
}

// noMBC is a fixed, unbanked 32 KiB ROM with no RAM.
type noMBC struct {
	rom []byte
}

func newNoMBC(rom []byte) *noMBC { return &noMBC{rom: rom} }

func (m *noMBC) ReadROM(addr uint16) uint8 {
	if int(addr) < len(m.rom) {
		return m.rom[addr]
	}
	return 0xFF
}
func (m *noMBC) WriteROM(addr uint16, value uint8)  {}
func (m *noMBC) ReadRAM(addr uint16) uint8          { return 0xFF }
func (m *noMBC) WriteRAM(addr uint16, value uint8) bool { return false }
func (m *noMBC) Save(b *state.Buffer)               {}
func (m *noMBC) Load(b *state.Buffer)               {}

// romBank returns data sliced to a 16 KiB window starting at bank*0x4000,
// zero-padded if the ROM is shorter than that (shouldn't happen for a
// header-validated ROM, but keeps bank math panic-free).
func romBank(rom []byte, bank int) []byte {
	start := bank * 0x4000
	if start >= len(rom) {
		return nil
	}
	end := start + 0x4000
	if end > len(rom) {
		end = len(rom)
	}
	return rom[start:end]
}

func readBank(bank []byte, offset uint16) uint8 {
	if bank == nil || int(offset) >= len(bank) {
		return 0xFF
	}
	return bank[offset]
}
