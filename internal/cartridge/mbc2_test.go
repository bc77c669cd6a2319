package cartridge

import (
	"testing"

	"github.com/mjstead/dmgcore/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMBC2ROM() []byte {
	return buildROM(TypeMBC2Battery, 0x03, 0x00)
}

func TestMBC2AddressBit8SelectsRAMEnableOrBankRegister(t *testing.T) {
	rom := buildMBC2ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	assert.Equal(t, uint8(1), c.Read(0x4000), "bank register resets to 1")

	c.Write(0x2100, 0x03) // bit 8 set: bank select
	assert.Equal(t, uint8(3), c.Read(0x4000))

	c.Write(0x2100, 0x00) // bank 0 remaps to 1
	assert.Equal(t, uint8(1), c.Read(0x4000))
}

func TestMBC2RAMRequiresEnableAndMasksToLowNibble(t *testing.T) {
	rom := buildMBC2ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0xA000, 0x9A)
	assert.Equal(t, uint8(0xFF), c.Read(0xA000), "disabled RAM reads high")

	c.Write(0x0000, 0x0A) // bit 8 clear: RAM enable
	c.Write(0xA000, 0x9A)
	assert.Equal(t, uint8(0xFA), c.Read(0xA000), "only the low nibble is stored, high nibble reads as 1s")
}

func TestMBC2RAMWrapsWithin512Entries(t *testing.T) {
	rom := buildMBC2ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x05)
	assert.Equal(t, uint8(0xF5), c.Read(0xA000))
	// address 0xA000+512 wraps back onto the same 512-entry array
	assert.Equal(t, uint8(0xF5), c.Read(0xA000+512))
}

func TestMBC2SaveLoadRoundTripsRAMAndBank(t *testing.T) {
	rom := buildMBC2ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x2100, 0x07)
	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x0C)

	buf := state.New()
	c.Save(buf)

	other, err := New(rom, nil)
	require.NoError(t, err)
	other.Load(buf)

	assert.Equal(t, uint8(7), other.Read(0x4000))
	other.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0xFC), other.Read(0xA000))
}
