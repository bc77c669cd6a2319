package cartridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildMBC3ROM() []byte {
	return buildROM(TypeMBC3TimerRAMBattery, 0x01, 0x02)
}

func TestMBC3RAMBankSwitchAndRTCSelectShareTheSelRegister(t *testing.T) {
	rom := buildMBC3ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x0000, 0x0A) // enable RAM/RTC
	c.Write(0x4000, 0x00) // select RAM bank 0
	c.Write(0xA000, 0x55)
	assert.Equal(t, uint8(0x55), c.Read(0xA000))

	c.Write(0x4000, 0x08) // select RTC seconds register
	c.Write(0x6000, 0x00) // latch sequence
	c.Write(0x6000, 0x01)
	assert.LessOrEqual(t, c.Read(0xA000), uint8(59))
}

func TestMBC3RTCHaltFreezesSeconds(t *testing.T) {
	rom := buildMBC3ROM()
	c, err := New(rom, nil)
	require.NoError(t, err)

	c.Write(0x0000, 0x0A)
	c.Write(0x4000, 0x0C) // day-high/halt/carry register
	c.Write(0xA000, 0x40) // halt the clock
	c.Write(0x4000, 0x08) // seconds register

	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01)
	first := c.Read(0xA000)

	c.Write(0x6000, 0x00)
	c.Write(0x6000, 0x01)
	second := c.Read(0xA000)

	assert.Equal(t, first, second, "halted RTC should not advance between latches")
}
