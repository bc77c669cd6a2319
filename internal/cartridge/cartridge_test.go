package cartridge

import (
	"testing"

	"github.com/mjstead/dmgcore/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildROM returns a rom of romSizeCode's declared size with a valid
// header at 0x100-0x14F, and a one-byte marker at the start of every
// 16 KiB bank equal to the bank's index, for testing bank switching.
func buildROM(t Type, romSizeCode, ramSizeCode uint8) []byte {
	size := (32 * 1024) << romSizeCode
	rom := make([]byte, size)
	copy(rom[0x134:0x144], "TESTGAME")
	rom[0x147] = uint8(t)
	rom[0x148] = romSizeCode
	rom[0x149] = ramSizeCode
	for bank := 0; bank*0x4000 < size; bank++ {
		rom[bank*0x4000] = uint8(bank)
	}
	return rom
}

func TestParseHeaderDecodesTitleAndSizes(t *testing.T) {
	rom := buildROM(TypeMBC1, 0x01, 0x02)
	h, err := ParseHeader(rom)
	require.NoError(t, err)
	assert.Equal(t, "TESTGAME", h.Title)
	assert.Equal(t, 64*1024, h.ROMSize)
	assert.Equal(t, 8*1024, h.RAMSize)
}

func TestParseHeaderRejectsTruncatedROM(t *testing.T) {
	_, err := ParseHeader(make([]byte, 0x10))
	assert.Error(t, err)
}

func TestNoMBCDispatchesStraightReads(t *testing.T) {
	rom := buildROM(TypeROMOnly, 0x00, 0x00)
	c, err := New(rom, nil)
	require.NoError(t, err)
	assert.Equal(t, uint8(0), c.Read(0x0000))
}

func TestMBC1BankSwitchingSelectsHighBank(t *testing.T) {
	rom := buildROM(TypeMBC1, 0x01, 0x02) // 64 KiB -> 4 banks
	c, err := New(rom, nil)
	require.NoError(t, err)

	assert.Equal(t, uint8(0), c.Read(0x0000), "bank 0 is always fixed")
	assert.Equal(t, uint8(1), c.Read(0x4000), "bank register resets to 1")

	c.Write(0x2000, 0x03) // select bank 3
	assert.Equal(t, uint8(3), c.Read(0x4000))
}

func TestMBC1RAMRequiresEnableAndTracksDirty(t *testing.T) {
	rom := buildROM(TypeMBC1RAMBattery, 0x01, 0x02)
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0xA000, 0x42)
	assert.False(t, c.Dirty(), "write must be dropped while RAM is disabled")
	assert.Equal(t, uint8(0xFF), c.Read(0xA000))

	c.Write(0x0000, 0x0A) // enable RAM
	c.Write(0xA000, 0x42)
	assert.True(t, c.Dirty())
	assert.Equal(t, uint8(0x42), c.Read(0xA000))

	c.ClearDirty()
	assert.False(t, c.Dirty())
}

func TestCartridgeRAMRoundTripsThroughNew(t *testing.T) {
	rom := buildROM(TypeMBC1RAMBattery, 0x01, 0x02)
	c, err := New(rom, nil)
	require.NoError(t, err)
	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x99)

	saved := c.RAM()

	restored, err := New(rom, saved)
	require.NoError(t, err)
	restored.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0x99), restored.Read(0xA000))
}

func TestSaveLoadPreservesDirtyFlag(t *testing.T) {
	rom := buildROM(TypeMBC1RAMBattery, 0x01, 0x02)
	c, err := New(rom, nil)
	require.NoError(t, err)
	c.Write(0x0000, 0x0A)
	c.Write(0xA000, 0x07)

	buf := state.New()
	c.Save(buf)

	other, err := New(rom, nil)
	require.NoError(t, err)
	other.Load(buf)

	assert.True(t, other.Dirty())
}

func TestHasBattery(t *testing.T) {
	assert.True(t, TypeMBC1RAMBattery.HasBattery())
	assert.False(t, TypeMBC1.HasBattery())
	assert.False(t, TypeROMOnly.HasBattery())
}
