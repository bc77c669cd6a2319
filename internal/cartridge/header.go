// Package cartridge decodes the ROM header, selects the matching memory
// bank controller, and exposes the 8-bit cartridge read/write interface
// the bus dispatches 0x0000-0x7FFF and 0xA000-0xBFFF accesses to.
package cartridge

import "fmt"

// Type is the cartridge-type byte at ROM offset 0x0147.
type Type uint8

const (
	TypeROMOnly          Type = 0x00
	TypeMBC1             Type = 0x01
	TypeMBC1RAM          Type = 0x02
	TypeMBC1RAMBattery   Type = 0x03
	TypeMBC2             Type = 0x05
	TypeMBC2Battery      Type = 0x06
	TypeMBC3TimerBattery    Type = 0x0F
	TypeMBC3TimerRAMBattery Type = 0x10
	TypeMBC3             Type = 0x11
	TypeMBC3RAM          Type = 0x12
	TypeMBC3RAMBattery   Type = 0x13
	TypeMBC5             Type = 0x19
	TypeMBC5RAM          Type = 0x1A
	TypeMBC5RAMBattery   Type = 0x1B
	TypeMBC5Rumble       Type = 0x1C
	TypeMBC5RumbleRAM    Type = 0x1D
	TypeMBC5RumbleRAMBattery Type = 0x1E
)

var ramSizes = map[uint8]int{
	0x00: 0,
	0x01: 2 * 1024, // listed in some references; treated as unbanked 2K
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Header is the decoded 0x0100-0x014F ROM header.
type Header struct {
	Title         string
	Type          Type
	ROMSize       int
	RAMSize       int
}

// ErrUnsupportedCartridge is returned by ParseHeader when the cartridge
// type or declared size is outside what this core supports.
type ErrUnsupportedCartridge struct {
	Reason string
}

func (e *ErrUnsupportedCartridge) Error() string {
	return fmt.Sprintf("cartridge: invalid rom: %s", e.Reason)
}

// ParseHeader decodes rom's header. rom must be at least 0x150 bytes.
func ParseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, &ErrUnsupportedCartridge{Reason: fmt.Sprintf("rom too short (%d bytes)", len(rom))}
	}

	h := Header{}

	title := rom[0x134:0x144]
	end := len(title)
	for i, b := range title {
		if b == 0 {
			end = i
			break
		}
	}
	h.Title = string(title[:end])

	h.Type = Type(rom[0x147])

	romSizeCode := rom[0x148]
	if romSizeCode > 0x08 {
		return Header{}, &ErrUnsupportedCartridge{Reason: fmt.Sprintf("unsupported rom size code 0x%02X", romSizeCode)}
	}
	h.ROMSize = (32 * 1024) << romSizeCode

	ramSize, ok := ramSizes[rom[0x149]]
	if !ok {
		return Header{}, &ErrUnsupportedCartridge{Reason: fmt.Sprintf("unsupported ram size code 0x%02X", rom[0x149])}
	}
	h.RAMSize = ramSize

	if len(rom) < h.ROMSize {
		return Header{}, &ErrUnsupportedCartridge{Reason: fmt.Sprintf("rom declares %d bytes but only %d were supplied", h.ROMSize, len(rom))}
	}

	switch h.Type {
	case TypeROMOnly, TypeMBC1, TypeMBC1RAM, TypeMBC1RAMBattery,
		TypeMBC2, TypeMBC2Battery,
		TypeMBC3, TypeMBC3RAM, TypeMBC3RAMBattery, TypeMBC3TimerBattery, TypeMBC3TimerRAMBattery,
		TypeMBC5, TypeMBC5RAM, TypeMBC5RAMBattery, TypeMBC5Rumble, TypeMBC5RumbleRAM, TypeMBC5RumbleRAMBattery:
		// supported
	default:
		return Header{}, &ErrUnsupportedCartridge{Reason: fmt.Sprintf("unsupported cartridge type 0x%02X", uint8(h.Type))}
	}

	// MBC2 has a fixed 512x4-bit internal RAM regardless of the header's
	// declared RAM size byte (which is conventionally 0 for MBC2 carts).
	if h.Type == TypeMBC2 || h.Type == TypeMBC2Battery {
		h.RAMSize = 512
	}

	return h, nil
}

// HasBattery reports whether the cartridge type persists RAM across
// power cycles (relevant only to a host deciding whether to call the
// save sink; the core always keeps RAM dirty-tracked regardless).
func (t Type) HasBattery() bool {
	switch t {
	case TypeMBC1RAMBattery, TypeMBC2Battery, TypeMBC3RAMBattery,
		TypeMBC3TimerBattery, TypeMBC3TimerRAMBattery,
		TypeMBC5RAMBattery, TypeMBC5RumbleRAMBattery:
		return true
	}
	return false
}
