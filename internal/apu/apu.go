// Package apu implements the DMG audio processing unit: four sound
// channels (sweep square, square, programmable wave, noise), the
// 512 Hz frame sequencer that drives their length/envelope/sweep
// units, and NR50/NR51 stereo mixing into float32 sample pairs in
// [-1,1] handed to the host's audio sink.
//
// Audio device ownership belongs to the host via Sink; the APU itself
// owns no output device and no package-level state.
package apu

import "github.com/mjstead/dmgcore/pkg/state"

// sampleRate is the rate, in Hz, at which Sink.PushSample is called.
// 4194304 (the DMG clock) is not a multiple of it; the down-sample
// accumulator carries the remainder from one sample to the next.
const sampleRate = 44100

// Sink receives one stereo sample pair, each channel in [-1,1], at
// sampleRate.
type Sink interface {
	PushSample(left, right float32)
}

// APU is the DMG audio processing unit.
type APU struct {
	enabled bool

	ch1 *channel1
	ch2 *channel2
	ch3 *channel3
	ch4 *channel4

	frameSeqTimer uint16
	frameSeqStep  uint8
	firstHalf     bool

	sampleAcc int32

	vinLeft, vinRight       bool
	volumeLeft, volumeRight uint8
	leftEnable, rightEnable [4]bool

	sink  Sink
	debug DebugHook
}

// DebugHook receives each channel's raw 0..15 amplitude whenever the
// APU mixes a sample, for a host-attached visualizer. It is never
// required and has no effect on mixing or stepping.
type DebugHook interface {
	Record(ch1, ch2, ch3, ch4 uint8)
}

// AttachDebugHook installs a DebugHook; nil detaches it.
func (a *APU) AttachDebugHook(hook DebugHook) { a.debug = hook }

// New returns a powered-on APU with all channels silenced (NR52 reads
// 0xF0).
func New() *APU {
	return &APU{
		ch1:       newChannel1(),
		ch2:       newChannel2(),
		ch3:       newChannel3(),
		ch4:       newChannel4(),
		enabled:   true,
		firstHalf: true,
	}
}

// AttachSink installs the host's audio sink. Nil is valid (samples are
// simply dropped).
func (a *APU) AttachSink(sink Sink) { a.sink = sink }

// TickT advances the APU, its four channels, and (every 8192 T-cycles)
// the frame sequencer, by one T-cycle.
func (a *APU) TickT() {
	if !a.enabled {
		return
	}

	a.ch1.tickFrequency()
	a.ch2.tickFrequency()
	a.ch3.tickFrequency()
	a.ch4.tickFrequency()

	a.frameSeqTimer++
	if a.frameSeqTimer >= 8192 {
		a.frameSeqTimer = 0
		a.stepFrameSequencer()
	}

	a.sampleAcc += sampleRate
	if a.sampleAcc >= 4194304 {
		a.sampleAcc -= 4194304
		a.mix()
	}
}

func (a *APU) stepFrameSequencer() {
	switch a.frameSeqStep {
	case 0, 2, 4, 6:
		a.ch1.tickLength()
		a.ch2.tickLength()
		a.ch3.tickLength()
		a.ch4.tickLength()
		a.firstHalf = false
	case 7:
		a.ch1.tickEnvelope()
		a.ch2.tickEnvelope()
		a.ch4.tickEnvelope()
	}
	if a.frameSeqStep == 2 || a.frameSeqStep == 6 {
		a.ch1.tickSweep()
	}
	if a.frameSeqStep%2 == 1 {
		a.firstHalf = true
	}
	a.frameSeqStep = (a.frameSeqStep + 1) & 0x07
}

// fullScale is the largest value four maxed-out channels scaled by the
// maximum NR50 volume (8) can reach: 4 channels * 15 amplitude * 8
// volume. Dividing by it normalizes mix() to [-1,1].
const fullScale = 4 * 15 * 8

func (a *APU) mix() {
	amp1, amp2, amp3, amp4 := a.ch1.amplitude(), a.ch2.amplitude(), a.ch3.amplitude(), a.ch4.amplitude()
	if a.debug != nil {
		a.debug.Record(amp1, amp2, amp3, amp4)
	}
	if a.sink == nil {
		return
	}
	c1 := int32(amp1)
	c2 := int32(amp2)
	c3 := int32(amp3)
	c4 := int32(amp4)

	var left, right int32
	if a.leftEnable[0] {
		left += c1
	}
	if a.leftEnable[1] {
		left += c2
	}
	if a.leftEnable[2] {
		left += c3
	}
	if a.leftEnable[3] {
		left += c4
	}
	if a.rightEnable[0] {
		right += c1
	}
	if a.rightEnable[1] {
		right += c2
	}
	if a.rightEnable[2] {
		right += c3
	}
	if a.rightEnable[3] {
		right += c4
	}

	left *= int32(a.volumeLeft + 1)
	right *= int32(a.volumeRight + 1)

	a.sink.PushSample(clampSample(left), clampSample(right))
}

func clampSample(v int32) float32 {
	f := float32(v) / fullScale
	if f > 1 {
		return 1
	}
	if f < -1 {
		return -1
	}
	return f
}

// Read dispatches a register read in 0xFF10-0xFF3F.
func (a *APU) Read(addr uint16) uint8 {
	switch addr {
	case 0xFF10:
		return a.ch1.readNR10()
	case 0xFF11:
		return a.ch1.duty<<6 | 0x3F
	case 0xFF12:
		return a.ch1.getNRx2()
	case 0xFF13:
		return 0xFF
	case 0xFF14:
		return lengthFlag(a.ch1.lengthCounterEnabled) | 0xBF
	case 0xFF16:
		return a.ch2.duty<<6 | 0x3F
	case 0xFF17:
		return a.ch2.getNRx2()
	case 0xFF18:
		return 0xFF
	case 0xFF19:
		return lengthFlag(a.ch2.lengthCounterEnabled) | 0xBF
	case 0xFF1A:
		return a.ch3.readNR30()
	case 0xFF1B:
		return 0xFF
	case 0xFF1C:
		return a.ch3.volumeShift<<5 | 0x9F
	case 0xFF1D:
		return 0xFF
	case 0xFF1E:
		return lengthFlag(a.ch3.lengthCounterEnabled) | 0xBF
	case 0xFF20:
		return 0xFF
	case 0xFF21:
		return a.ch4.getNRx2()
	case 0xFF22:
		return a.ch4.readNR43()
	case 0xFF23:
		return lengthFlag(a.ch4.lengthCounterEnabled) | 0xBF
	case 0xFF24:
		return a.nr50()
	case 0xFF25:
		return a.nr51()
	case 0xFF26:
		return a.nr52()
	}
	if addr >= 0xFF30 && addr <= 0xFF3F {
		return a.ch3.readWaveRAM(addr)
	}
	return 0xFF
}

// Write dispatches a register write in 0xFF10-0xFF3F. Writes other
// than to NR52 and wave RAM (0xFF30-0xFF3F) are ignored while the APU
// is powered off, matching
// hardware (with the length-counter write exception DMG allows; not
// modeled here as it only matters to a handful of test ROMs).
func (a *APU) Write(addr uint16, v uint8) {
	if !a.enabled && addr != 0xFF26 && !(addr >= 0xFF30 && addr <= 0xFF3F) {
		return
	}
	switch addr {
	case 0xFF10:
		a.ch1.writeNR10(v)
	case 0xFF11:
		a.ch1.writeNR11(v)
	case 0xFF12:
		a.ch1.setNRx2(v)
	case 0xFF13:
		a.ch1.frequency = a.ch1.frequency&0x700 | uint16(v)
	case 0xFF14:
		a.ch1.writeNR14(v, a.firstHalf)
	case 0xFF16:
		a.ch2.writeNR21(v)
	case 0xFF17:
		a.ch2.setNRx2(v)
	case 0xFF18:
		a.ch2.frequency = a.ch2.frequency&0x700 | uint16(v)
	case 0xFF19:
		a.ch2.writeNR24(v, a.firstHalf)
	case 0xFF1A:
		a.ch3.writeNR30(v)
	case 0xFF1B:
		a.ch3.writeNR31(v)
	case 0xFF1C:
		a.ch3.writeNR32(v)
	case 0xFF1D:
		a.ch3.frequency = a.ch3.frequency&0x700 | uint16(v)
	case 0xFF1E:
		a.ch3.writeNR34(v, a.firstHalf)
	case 0xFF20:
		a.ch4.writeNR41(v)
	case 0xFF21:
		a.ch4.setNRx2(v)
	case 0xFF22:
		a.ch4.writeNR43(v)
	case 0xFF23:
		a.ch4.writeNR44(v, a.firstHalf)
	case 0xFF24:
		a.vinLeft = v&0x80 != 0
		a.volumeLeft = (v >> 4) & 0x07
		a.vinRight = v&0x08 != 0
		a.volumeRight = v & 0x07
	case 0xFF25:
		for i := 0; i < 4; i++ {
			a.rightEnable[i] = v&(1<<i) != 0
			a.leftEnable[i] = v&(1<<(i+4)) != 0
		}
	case 0xFF26:
		wasEnabled := a.enabled
		a.enabled = v&0x80 != 0
		if wasEnabled && !a.enabled {
			*a = APU{sink: a.sink, ch1: newChannel1(), ch2: newChannel2(), ch3: newChannel3(), ch4: newChannel4()}
		} else if !wasEnabled && a.enabled {
			a.firstHalf = true
		}
	}
	if addr >= 0xFF30 && addr <= 0xFF3F {
		a.ch3.writeWaveRAM(addr, v)
	}
}

func lengthFlag(v bool) uint8 {
	if v {
		return 0x40
	}
	return 0
}

func (a *APU) nr50() uint8 {
	b := a.volumeLeft<<4 | a.volumeRight
	if a.vinLeft {
		b |= 0x80
	}
	if a.vinRight {
		b |= 0x08
	}
	return b
}

func (a *APU) nr51() uint8 {
	var b uint8
	for i := 0; i < 4; i++ {
		if a.rightEnable[i] {
			b |= 1 << i
		}
		if a.leftEnable[i] {
			b |= 1 << (i + 4)
		}
	}
	return b
}

func (a *APU) nr52() uint8 {
	b := uint8(0x70)
	if a.enabled {
		b |= 0x80
	}
	if a.ch1.isOn() {
		b |= 0x01
	}
	if a.ch2.isOn() {
		b |= 0x02
	}
	if a.ch3.isOn() {
		b |= 0x04
	}
	if a.ch4.isOn() {
		b |= 0x08
	}
	return b
}

var _ state.Stater = (*APU)(nil)

func (a *APU) Save(b *state.Buffer) {
	b.WriteBool(a.enabled)
	b.WriteBytes(a.ch3.waveRAM[:])
	b.Write16(uint16(a.ch1.frequency))
	b.Write16(uint16(a.ch2.frequency))
	b.Write16(uint16(a.ch3.frequency))
	b.Write8(a.frameSeqStep)
	b.Write16(a.frameSeqTimer)
}

func (a *APU) Load(b *state.Buffer) {
	a.enabled = b.ReadBool()
	b.ReadBytes(a.ch3.waveRAM[:])
	a.ch1.frequency = b.Read16()
	a.ch2.frequency = b.Read16()
	a.ch3.frequency = b.Read16()
	a.frameSeqStep = b.Read8()
	a.frameSeqTimer = b.Read16()
}
