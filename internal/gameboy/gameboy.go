// Package gameboy composes the CPU, bus, and every peripheral into a
// runnable machine: the driver named in the component table as
// "GameBoy", which owns the master step loop and fans frames, audio,
// and save data out to host-supplied sinks.
//
// It is the top-level composition root: a synchronous, single-
// threaded machine built entirely from constructor-injected
// dependencies, with no package-level or global state.
package gameboy

import (
	"github.com/mjstead/dmgcore/internal/apu"
	"github.com/mjstead/dmgcore/internal/bus"
	"github.com/mjstead/dmgcore/internal/cartridge"
	"github.com/mjstead/dmgcore/internal/cpu"
	"github.com/mjstead/dmgcore/internal/interrupts"
	"github.com/mjstead/dmgcore/internal/joypad"
	"github.com/mjstead/dmgcore/internal/ppu"
	"github.com/mjstead/dmgcore/internal/timer"
	"github.com/mjstead/dmgcore/pkg/log"
	"github.com/mjstead/dmgcore/pkg/state"
)

// GameBoy is a fully wired DMG machine. It owns no background
// goroutines and no event loop; the host calls Step (or Frame) in its
// own loop.
type GameBoy struct {
	cpu  *cpu.CPU
	bus  *bus.Bus
	irq  *interrupts.Service
	tmr  *timer.Controller
	pad  *joypad.State
	ppu  *ppu.PPU
	apu  *apu.APU
	cart *cartridge.Cartridge

	log log.Logger

	lcdSink    LCDSink
	stereoSink StereoSink
	saveSink   GameSaveSink
	events     <-chan JoypadEvent
}

// New constructs a GameBoy from cfg, applying opts. It returns an
// error only if the ROM header is invalid or names an unsupported
// cartridge type.
func New(cfg Config, opts ...Opt) (*GameBoy, error) {
	g := &GameBoy{log: log.New()}
	for _, opt := range opts {
		opt(g)
	}

	header, err := cartridge.ParseHeader(cfg.ROM)
	if err != nil {
		return nil, err
	}

	var ram []byte
	if g.saveSink != nil {
		g.saveSink.SetTitle(header.Title)
		loaded, err := g.saveSink.Load()
		if err != nil {
			g.log.Errorf("gameboy: loading save RAM: %s", err)
		} else if len(loaded) == header.RAMSize {
			ram = loaded
		} else if loaded != nil {
			g.log.Errorf("gameboy: discarding save RAM: got %d bytes, want %d", len(loaded), header.RAMSize)
		}
	}

	cart, err := cartridge.New(cfg.ROM, ram)
	if err != nil {
		return nil, err
	}

	g.irq = interrupts.NewService()
	g.tmr = timer.NewController(g.irq)
	g.pad = joypad.New(g.irq)
	g.ppu = ppu.New(g.irq)
	g.apu = apu.New()
	g.cart = cart

	if !cfg.Headless {
		if g.lcdSink != nil {
			g.ppu.AttachSink(g.lcdSink)
		}
		if g.stereoSink != nil {
			g.apu.AttachSink(g.stereoSink)
		}
	}

	g.bus = bus.New(g.cart, g.ppu, g.apu, g.tmr, g.pad, g.irq)
	g.cpu = cpu.NewCPU(g.bus, g.irq)

	if len(cfg.BootROM) == 256 {
		var rom bus.BootROM
		copy(rom[:], cfg.BootROM)
		g.bus.AttachBootROM(&rom)
	} else {
		if len(cfg.BootROM) != 0 {
			g.log.Errorf("gameboy: ignoring boot ROM of length %d (want 256)", len(cfg.BootROM))
		}
		g.cpu.Reset()
	}

	return g, nil
}

// Step drains pending joypad events, then executes exactly one CPU
// instruction (or idle cycle, or interrupt dispatch), ticking every
// peripheral alongside it. It returns the number of M-cycles spent.
// Dirty cartridge RAM is flushed to the save sink, if any, after every
// step.
func (g *GameBoy) Step() int {
	g.drainEvents()
	cycles := g.cpu.Step()
	g.flushSave()
	return cycles
}

// Frame steps the machine until the PPU completes one frame (or, if
// the LCD is disabled and never will, a large step budget is spent
// instead of looping forever).
func (g *GameBoy) Frame() {
	const maxStepsWithoutFrame = 200000
	for i := 0; i < maxStepsWithoutFrame; i++ {
		g.Step()
		if g.ppu.HasFrame() {
			g.ppu.ClearFrame()
			return
		}
	}
}

func (g *GameBoy) drainEvents() {
	if g.events == nil {
		return
	}
	for {
		select {
		case ev := <-g.events:
			g.pad.Update(ev.Button, ev.Pressed)
		default:
			return
		}
	}
}

func (g *GameBoy) flushSave() {
	if g.saveSink == nil || !g.cart.Dirty() {
		return
	}
	g.saveSink.Save(g.cart.RAM())
	g.cart.ClearDirty()
}

// SaveState serializes the full machine state (everything but
// cartridge RAM persistence, which the save sink owns separately) to
// a checksummed byte buffer.
func (g *GameBoy) SaveState() []byte {
	b := state.New()
	g.cpu.Save(b)
	g.bus.Save(b)
	g.irq.Save(b)
	g.tmr.Save(b)
	g.pad.Save(b)
	g.ppu.Save(b)
	g.apu.Save(b)
	g.cart.Save(b)
	return b.Seal()
}

// LoadState restores machine state previously produced by SaveState.
// It returns an error, leaving the machine untouched, if raw is
// truncated or its checksum doesn't match.
func (g *GameBoy) LoadState(raw []byte) error {
	b, err := state.Open(raw)
	if err != nil {
		return err
	}
	g.cpu.Load(b)
	g.bus.Load(b)
	g.irq.Load(b)
	g.tmr.Load(b)
	g.pad.Load(b)
	g.ppu.Load(b)
	g.apu.Load(b)
	g.cart.Load(b)
	return nil
}

// Joypad returns the machine's joypad state, for hosts that update it
// directly instead of through a JoypadEvent channel.
func (g *GameBoy) Joypad() *joypad.State { return g.pad }

// SerialOut returns accumulated serial-port output (bytes written to
// SB while SC requested a transfer), for capturing test-ROM banners.
func (g *GameBoy) SerialOut() []uint8 { return g.bus.SerialOut() }

// ClearSerialOut discards accumulated serial output.
func (g *GameBoy) ClearSerialOut() { g.bus.ClearSerialOut() }
