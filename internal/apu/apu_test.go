package apu

import (
	"testing"

	"github.com/mjstead/dmgcore/pkg/state"
	"github.com/stretchr/testify/assert"
)

type fakeSink struct {
	left, right []float32
}

func (f *fakeSink) PushSample(left, right float32) {
	f.left = append(f.left, left)
	f.right = append(f.right, right)
}

func triggerChannel1(a *APU) {
	a.Write(0xFF12, 0xF0) // max starting volume, no envelope sweep
	a.Write(0xFF11, 0x80) // duty 2
	a.Write(0xFF13, 0x00)
	a.Write(0xFF14, 0x87) // trigger, frequency high bits 7
}

func TestTriggerEnablesChannelAndNR52ReflectsIt(t *testing.T) {
	a := New()
	assert.Equal(t, uint8(0), a.nr52()&0x01)
	triggerChannel1(a)
	assert.NotEqual(t, uint8(0), a.nr52()&0x01)
}

func TestPoweringOffSilencesAndClearsRegisters(t *testing.T) {
	a := New()
	triggerChannel1(a)
	a.Write(0xFF24, 0x77) // NR50 volume
	a.Write(0xFF26, 0x00) // power off

	assert.Equal(t, uint8(0), a.Read(0xFF24), "NR50 resets to 0 on power loss")
	assert.Equal(t, uint8(0), a.nr52()&0x80)
}

func TestWritesIgnoredWhilePoweredOffExceptWaveRAM(t *testing.T) {
	a := New()
	a.Write(0xFF26, 0x00)
	a.Write(0xFF11, 0xFF)
	assert.Equal(t, uint8(0x3F), a.Read(0xFF11), "write should have been dropped")

	a.Write(0xFF30, 0xAB)
	assert.Equal(t, uint8(0xAB), a.Read(0xFF30), "wave RAM stays writable while powered off")
}

func TestMixProducesSamplesWithinUnitRange(t *testing.T) {
	a := New()
	sink := &fakeSink{}
	a.AttachSink(sink)
	triggerChannel1(a)
	a.Write(0xFF24, 0x77) // NR50 max volume both channels
	a.Write(0xFF25, 0x11) // route channel 1 to both left and right

	for i := 0; i < 4194304/44100+1; i++ {
		a.TickT()
	}

	if assert.NotEmpty(t, sink.left) {
		for _, v := range sink.left {
			assert.GreaterOrEqual(t, v, float32(-1))
			assert.LessOrEqual(t, v, float32(1))
		}
	}
}

func TestDebugHookReceivesAmplitudesOnMix(t *testing.T) {
	a := New()
	rec := &recordingHook{}
	a.AttachDebugHook(rec)
	triggerChannel1(a)

	for i := 0; i < 4194304/44100+1; i++ {
		a.TickT()
	}
	assert.NotEmpty(t, rec.calls)
}

type recordingHook struct {
	calls int
}

func (r *recordingHook) Record(ch1, ch2, ch3, ch4 uint8) { r.calls++ }

func TestSaveLoadRoundTripsWaveRAMAndFrequency(t *testing.T) {
	a := New()
	a.Write(0xFF1A, 0x80)
	a.Write(0xFF30, 0x12)
	a.Write(0xFF1D, 0x34)

	buf := state.New()
	a.Save(buf)

	other := New()
	other.Load(buf)
	assert.Equal(t, uint8(0x12), other.Read(0xFF30))
	assert.Equal(t, uint16(0x34), other.ch3.frequency)
}
