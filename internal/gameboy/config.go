package gameboy

import (
	"github.com/mjstead/dmgcore/internal/apu"
	"github.com/mjstead/dmgcore/internal/joypad"
	"github.com/mjstead/dmgcore/internal/ppu"
)

// Config configures a GameBoy at construction. ROM is required; every
// other field is optional.
type Config struct {
	// ROM is the cartridge image, including its 0x0000-0x014F header.
	ROM []byte
	// BootROM, if non-nil, must be exactly 256 bytes and is mapped at
	// 0x0000-0x00FF until the game writes to 0xFF50. If nil, the CPU
	// and I/O registers are instead initialized directly to their
	// documented post-boot values.
	BootROM []byte
	// Headless skips PPU frame emission and APU sample emission
	// entirely, for save-state fuzzing or test-ROM running where no
	// host sink is attached.
	Headless bool
	// LogFilePath, if set, is where an instruction trace is written.
	// Unused unless a logger consulting it is installed via WithLogger.
	LogFilePath string
}

// LCDSink receives one completed 160x144 indexed frame buffer, valid
// only for the duration of the call.
type LCDSink = ppu.Sink

// StereoSink receives one interleaved stereo sample at the machine's
// configured sample rate.
type StereoSink = apu.Sink

// JoypadEvent is a single button transition reported by the host.
type JoypadEvent struct {
	Button  joypad.Button
	Pressed bool
}

// GameSaveSink persists cartridge RAM across runs.
type GameSaveSink interface {
	// SetTitle is called once at construction with the cartridge's
	// header title, before Load, so a host can key storage by it.
	SetTitle(title string)
	// Load returns previously persisted RAM, or nil if there is none.
	// The returned buffer is installed as initial cartridge RAM only
	// if its length matches the header's declared RAM size.
	Load() ([]byte, error)
	// Save is called whenever cartridge RAM has gone dirty since the
	// last Save.
	Save(ram []byte)
}
