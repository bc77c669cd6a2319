package cartridge

import (
	"time"

	"github.com/mjstead/dmgcore/pkg/state"
)

// mbc3 implements the MBC3 banking scheme: a 7-bit ROM bank register
// (0x2000-0x3FFF), a combined RAM-bank/RTC-register select
// (0x4000-0x5FFF, 0x00-0x03 selects RAM, 0x08-0x0C selects an RTC
// register), and a latch-on-0-then-1 write to 0x6000-0x7FFF that
// snapshots the live clock into the latched registers the CPU actually
// reads. Writing 0 to the ROM bank register selects bank 1, as on MBC1.
//
// Not named in the distilled banking-scheme list but not excluded by
// it either, so it's carried as a supplemental cartridge type. The RTC
// is modeled as a monotonic host-clock-driven counter without
// sub-second latch precision.
type mbc3 struct {
	rom []byte
	ram []byte

	ramEnable bool
	romBank   uint8 // 7 bits, 0 reads as 1
	sel       uint8 // 0x00-0x03: RAM bank; 0x08-0x0C: RTC register

	latchPending bool

	rtc rtc
	// latchSnapshot holds the five bytes (seconds, minutes, hours,
	// day-low, day-high) as of the last latch, in the order the RTC
	// register select 0x08-0x0C indexes into; these, not the live
	// clock, are what 0x08-0x0C reads return.
	latchSnapshot [5]uint8
}

// rtc holds the real-time-clock state. The elapsed second count
// free-runs from baseUnix while not halted; halting freezes it at a
// fixed offset instead.
type rtc struct {
	baseUnix int64
	haltedAt int64 // elapsed seconds accumulated before the clock was halted
	halted   bool
	carry    bool
}

func newMBC3(rom []byte, ramSize int) *mbc3 {
	return &mbc3{rom: rom, ram: make([]byte, ramSize), romBank: 1, rtc: rtc{baseUnix: time.Now().Unix()}}
}

func (m *mbc3) elapsed() int64 {
	if m.rtc.halted {
		return m.rtc.haltedAt
	}
	return m.rtc.haltedAt + (time.Now().Unix() - m.rtc.baseUnix)
}

func (m *mbc3) latch() {
	total := m.elapsed()
	days := total / 86400
	if days > 0x1FF {
		m.rtc.carry = true
		days %= 0x200
	}
	rem := total % 86400
	m.latchSnapshot = [5]uint8{
		uint8(rem % 60),
		uint8((rem / 60) % 60),
		uint8(rem / 3600),
		uint8(days & 0xFF),
		dayHigh(days, m.rtc.halted, m.rtc.carry),
	}
}

func dayHigh(days int64, halted, carry bool) uint8 {
	v := uint8(days>>8) & 0x01
	if halted {
		v |= 0x40
	}
	if carry {
		v |= 0x80
	}
	return v
}

func (m *mbc3) ReadROM(addr uint16) uint8 {
	if addr < 0x4000 {
		return readBank(romBank(m.rom, 0), addr)
	}
	bank := m.romBank
	if bank == 0 {
		bank = 1
	}
	return readBank(romBank(m.rom, int(bank)), addr-0x4000)
}

func (m *mbc3) WriteROM(addr uint16, value uint8) {
	switch {
	case addr < 0x2000:
		m.ramEnable = value&0x0F == 0x0A
	case addr < 0x4000:
		bank := value & 0x7F
		if bank == 0 {
			bank = 1
		}
		m.romBank = bank
	case addr < 0x6000:
		m.sel = value
	default:
		if value == 0 {
			m.latchPending = true
		} else if value == 1 && m.latchPending {
			m.latch()
			m.latchPending = false
		} else {
			m.latchPending = false
		}
	}
}

func (m *mbc3) isRTCSelected() bool { return m.sel >= 0x08 && m.sel <= 0x0C }

func (m *mbc3) ReadRAM(addr uint16) uint8 {
	if !m.ramEnable {
		return 0xFF
	}
	if m.isRTCSelected() {
		return m.latchSnapshot[m.sel-0x08]
	}
	if len(m.ram) == 0 {
		return 0xFF
	}
	off := int(m.sel)*0x2000 + int(addr-0xA000)
	if off >= len(m.ram) {
		return 0xFF
	}
	return m.ram[off]
}

func (m *mbc3) WriteRAM(addr uint16, value uint8) bool {
	if !m.ramEnable {
		return false
	}
	if m.isRTCSelected() {
		switch m.sel {
		case 0x08:
			base := m.elapsed()
			m.rtc.haltedAt = base - base%60 + int64(value%60)
			if !m.rtc.halted {
				m.rtc.baseUnix = time.Now().Unix()
			}
		case 0x0C:
			wasHalted := m.rtc.halted
			now := m.elapsed()
			m.rtc.halted = value&0x40 != 0
			m.rtc.carry = value&0x80 != 0
			if m.rtc.halted && !wasHalted {
				m.rtc.haltedAt = now
			} else if !m.rtc.halted && wasHalted {
				m.rtc.baseUnix = time.Now().Unix()
			}
		}
		return true
	}
	if len(m.ram) == 0 {
		return false
	}
	off := int(m.sel)*0x2000 + int(addr-0xA000)
	if off >= len(m.ram) {
		return false
	}
	m.ram[off] = value
	return true
}

var _ state.Stater = (*mbc3)(nil)

func (m *mbc3) Save(b *state.Buffer) {
	b.WriteBool(m.ramEnable)
	b.Write8(m.romBank)
	b.Write8(m.sel)
	b.WriteBool(m.latchPending)
	b.Write32(uint32(m.elapsed()))
	b.WriteBool(m.rtc.halted)
	b.WriteBool(m.rtc.carry)
	for _, v := range m.latchSnapshot {
		b.Write8(v)
	}
	b.WriteBytes(m.ram)
}

func (m *mbc3) Load(b *state.Buffer) {
	m.ramEnable = b.ReadBool()
	m.romBank = b.Read8()
	m.sel = b.Read8()
	m.latchPending = b.ReadBool()
	elapsed := int64(b.Read32())
	m.rtc.halted = b.ReadBool()
	m.rtc.carry = b.ReadBool()
	m.rtc.haltedAt = elapsed
	m.rtc.baseUnix = time.Now().Unix()
	for i := range m.latchSnapshot {
		m.latchSnapshot[i] = b.Read8()
	}
	b.ReadBytes(m.ram)
}
