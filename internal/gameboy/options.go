package gameboy

import "github.com/mjstead/dmgcore/pkg/log"

// Opt configures a GameBoy at construction time.
type Opt func(*GameBoy)

// WithLCDSink installs the host's video frame receiver.
func WithLCDSink(sink LCDSink) Opt {
	return func(g *GameBoy) { g.lcdSink = sink }
}

// WithStereoSink installs the host's audio sample receiver.
func WithStereoSink(sink StereoSink) Opt {
	return func(g *GameBoy) { g.stereoSink = sink }
}

// WithSaveSink installs cartridge RAM persistence.
func WithSaveSink(sink GameSaveSink) Opt {
	return func(g *GameBoy) { g.saveSink = sink }
}

// WithJoypadEvents installs the host event queue Step drains
// non-blockingly before each instruction.
func WithJoypadEvents(events <-chan JoypadEvent) Opt {
	return func(g *GameBoy) { g.events = events }
}

// WithLogger overrides the default logger.
func WithLogger(l log.Logger) Opt {
	return func(g *GameBoy) { g.log = l }
}
