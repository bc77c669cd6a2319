package cartridge

import (
	"testing"

	"github.com/mjstead/dmgcore/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMBC5ROM() []byte {
	return buildROM(TypeMBC5RAMBattery, 0x03, 0x03) // 256 KiB -> 16 banks, 32 KiB RAM
}

func TestMBC5BankZeroIsAddressableUnlikeMBC1(t *testing.T) {
	rom := buildMBC5ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x2000, 0x00) // low byte of the 9-bit bank register
	assert.Equal(t, uint8(0), c.Read(0x4000), "bank 0 is addressable directly on MBC5")
}

func TestMBC5NineBitBankSplitsAcrossTwoRegisters(t *testing.T) {
	rom := buildMBC5ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x2000, 0xFF) // low 8 bits
	c.Write(0x3000, 0x01) // bit 8
	assert.Equal(t, uint8(0xFF), c.Read(0x4000), "bank 0x1FF is past the rom's 16 banks, reads as open bus")
}

func TestMBC5RAMBankSelectAndEnable(t *testing.T) {
	rom := buildMBC5ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0xA000, 0x11)
	assert.Equal(t, uint8(0xFF), c.Read(0xA000), "ram disabled reads high")

	c.Write(0x0000, 0x0A) // enable ram
	c.Write(0x4000, 0x01) // select ram bank 1
	c.Write(0xA000, 0x11)
	assert.Equal(t, uint8(0x11), c.Read(0xA000))

	c.Write(0x4000, 0x00) // back to ram bank 0, distinct storage
	assert.NotEqual(t, uint8(0x11), c.Read(0xA000))
}

func TestMBC5SaveLoadRoundTrip(t *testing.T) {
	rom := buildMBC5ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x0000, 0x0A)
	c.Write(0x2000, 0x05)
	c.Write(0x4000, 0x02)
	c.Write(0xA000, 0x77)

	buf := state.New()
	c.Save(buf)

	other, err := New(rom, nil)
	require.NoError(t, err)
	other.Load(buf)

	other.Write(0x0000, 0x0A)
	assert.Equal(t, uint8(0x77), other.Read(0xA000))
	assert.Equal(t, uint8(0x05), other.Read(0x4000))
}
