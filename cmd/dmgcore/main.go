// Command dmgcore is a demonstration host for the core library: it
// loads a ROM, opens an SDL2 window and audio device, polls keyboard
// input, and persists cartridge RAM to the local filesystem. It is
// not part of the core's public contract.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mjstead/dmgcore/internal/gameboy"
	"github.com/mjstead/dmgcore/internal/joypad"
	"github.com/mjstead/dmgcore/pkg/log"
	"github.com/mjstead/dmgcore/pkg/romarchive"
	"github.com/mjstead/dmgcore/pkg/savefile"
	"github.com/mjstead/dmgcore/pkg/scale"
	"github.com/sqweek/dialog"
	"github.com/veandco/go-sdl2/sdl"
	"golang.design/x/clipboard"
)

const sampleRate = 44100

func main() {
	romPath := flag.String("rom", "", "path to a .gb/.gbc ROM, or a .7z archive containing one")
	bootPath := flag.String("boot", "", "optional path to a 256-byte DMG boot ROM")
	scaleFactor := flag.Int("scale", 4, "integer window scale factor")
	flag.Parse()

	logger := log.New()

	rom, err := loadROM(*romPath)
	if err != nil {
		logger.Errorf("loading ROM: %s", err)
		os.Exit(1)
	}

	var boot []byte
	if *bootPath != "" {
		boot, err = os.ReadFile(*bootPath)
		if err != nil {
			logger.Errorf("loading boot ROM: %s", err)
			os.Exit(1)
		}
	}

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		logger.Errorf("sdl init: %s", err)
		os.Exit(1)
	}
	defer sdl.Quit()

	// clipboard.Init opens a connection to the platform clipboard; it is
	// best-effort here since a headless CI box or minimal X server may
	// not have one, and losing the copy-serial-output shortcut isn't
	// fatal to running the ROM.
	clipboardReady := clipboard.Init() == nil

	w, h := int32(160**scaleFactor), int32(144**scaleFactor)
	window, err := sdl.CreateWindow("dmgcore", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED, w, h, sdl.WINDOW_SHOWN)
	if err != nil {
		logger.Errorf("creating window: %s", err)
		os.Exit(1)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		logger.Errorf("creating renderer: %s", err)
		os.Exit(1)
	}
	defer renderer.Destroy()

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING, 160, 144)
	if err != nil {
		logger.Errorf("creating texture: %s", err)
		os.Exit(1)
	}
	defer texture.Destroy()

	audioSpec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S16SYS,
		Channels: 2,
		Samples:  1024,
	}
	audioDevice, err := sdl.OpenAudioDevice("", false, audioSpec, nil, 0)
	if err != nil {
		logger.Errorf("opening audio device: %s", err)
	} else {
		defer sdl.CloseAudioDevice(audioDevice)
		sdl.PauseAudioDevice(audioDevice, false)
	}

	lcd := &lcdSink{texture: texture}
	stereo := &stereoSink{device: audioDevice}
	saveSink := &fileSaveSink{dir: filepath.Dir(*romPath)}
	events := make(chan gameboy.JoypadEvent, 16)

	gb, err := gameboy.New(gameboy.Config{ROM: rom, BootROM: boot}, gameboy.WithLCDSink(lcd), gameboy.WithStereoSink(stereo), gameboy.WithSaveSink(saveSink), gameboy.WithJoypadEvents(events), gameboy.WithLogger(logger))
	if err != nil {
		logger.Errorf("constructing gameboy: %s", err)
		os.Exit(1)
	}

	running := true
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				switch {
				case e.Keysym.Sym == sdl.K_c && e.State == sdl.PRESSED && clipboardReady:
					clipboard.Write(clipboard.FmtText, gb.SerialOut())
					gb.ClearSerialOut()
				default:
					if btn, ok := keyButton[e.Keysym.Sym]; ok {
						events <- gameboy.JoypadEvent{Button: btn, Pressed: e.State == sdl.PRESSED}
					}
				}
			}
		}

		gb.Frame()

		renderer.Clear()
		renderer.Copy(texture, nil, nil)
		renderer.Present()
	}
}

func loadROM(path string) ([]byte, error) {
	if path == "" {
		picked, err := dialog.File().Filter("Game Boy ROM", "gb", "gbc", "7z").Load()
		if err != nil {
			return nil, fmt.Errorf("no ROM given and no file chosen: %w", err)
		}
		path = picked
	}
	if filepath.Ext(path) == ".7z" {
		return romarchive.Load(path)
	}
	return os.ReadFile(path)
}

var keyButton = map[sdl.Keycode]joypad.Button{
	sdl.K_UP:     joypad.ButtonUp,
	sdl.K_DOWN:   joypad.ButtonDown,
	sdl.K_LEFT:   joypad.ButtonLeft,
	sdl.K_RIGHT:  joypad.ButtonRight,
	sdl.K_z:      joypad.ButtonA,
	sdl.K_x:      joypad.ButtonB,
	sdl.K_RETURN: joypad.ButtonStart,
	sdl.K_RSHIFT: joypad.ButtonSelect,
}

// lcdSink implements gameboy.LCDSink by converting the frame to
// grayscale and uploading it at 160x144 into an SDL texture the main
// loop presents every iteration; the renderer stretches it to the
// window.
type lcdSink struct {
	texture *sdl.Texture
}

func (s *lcdSink) Frame(buf *[144][160]uint8) {
	gray := scale.ToGray(buf)
	pixels := make([]byte, 160*144*3)
	for i, v := range gray.Pix {
		pixels[i*3] = v
		pixels[i*3+1] = v
		pixels[i*3+2] = v
	}
	s.texture.Update(nil, pixels, 160*3)
}

// stereoSink implements gameboy.StereoSink by queuing interleaved
// 16-bit PCM to the SDL audio device.
type stereoSink struct {
	device sdl.AudioDeviceID
}

func (s *stereoSink) PushSample(left, right float32) {
	if s.device == 0 {
		return
	}
	buf := make([]byte, 4)
	putS16(buf[0:2], left)
	putS16(buf[2:4], right)
	sdl.QueueAudio(s.device, buf)
}

func putS16(b []byte, f float32) {
	v := int16(f * 32767)
	b[0] = byte(v)
	b[1] = byte(v >> 8)
}

// fileSaveSink persists cartridge RAM next to the ROM as <title>.sav,
// brotli-compressed via pkg/savefile.
type fileSaveSink struct {
	dir   string
	title string
}

func (f *fileSaveSink) SetTitle(title string) { f.title = title }

func (f *fileSaveSink) path() string {
	name := f.title
	if name == "" {
		name = "game"
	}
	return filepath.Join(f.dir, name+".sav")
}

func (f *fileSaveSink) Load() ([]byte, error) {
	data, err := savefile.Read(f.path())
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

func (f *fileSaveSink) Save(ram []byte) {
	_ = savefile.Write(f.path(), ram)
}
