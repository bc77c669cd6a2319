package interrupts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPendingRequiresBothEnableAndFlag(t *testing.T) {
	s := NewService()
	s.Request(VBlankFlag)
	assert.False(t, s.Pending(), "not enabled yet")

	s.Write(EnableRegister, 1<<VBlankFlag)
	assert.True(t, s.Pending())
}

func TestNextVectorPrioritizesLowestBit(t *testing.T) {
	s := NewService()
	s.Write(EnableRegister, 0x1F)
	s.Request(TimerFlag)
	s.Request(VBlankFlag)

	vector, flag := s.NextVector()
	assert.Equal(t, VBlankVector, vector)
	assert.Equal(t, VBlankFlag, flag)
}

func TestClearLowersFlag(t *testing.T) {
	s := NewService()
	s.Write(EnableRegister, 0xFF)
	s.Request(LCDFlag)
	s.Clear(LCDFlag)
	assert.False(t, s.Pending())
}

func TestReadIFSetsUnusedBits(t *testing.T) {
	s := NewService()
	assert.Equal(t, uint8(0xE0), s.Read(FlagRegister))
}

func TestEIPendingFlagRoundTrips(t *testing.T) {
	s := NewService()
	assert.False(t, s.EIPendingFlag())
	s.SetEIPending(true)
	assert.True(t, s.EIPendingFlag())
}
