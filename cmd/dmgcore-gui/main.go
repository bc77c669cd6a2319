// Command dmgcore-gui is a fyne-based demonstration host: a main
// window renders the LCD as a canvas raster, and an optional secondary
// window renders APU debug artifacts via pkg/visualize. It is not part
// of the core's public contract.
package main

import (
	"bytes"
	"flag"
	"image"
	"image/color"
	"os"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/mjstead/dmgcore/internal/gameboy"
	"github.com/mjstead/dmgcore/pkg/log"
	"github.com/mjstead/dmgcore/pkg/scale"
	"github.com/mjstead/dmgcore/pkg/visualize"
)

func main() {
	romPath := flag.String("rom", "", "path to a .gb ROM")
	bootPath := flag.String("boot", "", "optional path to a 256-byte DMG boot ROM")
	flag.Parse()

	logger := log.New()

	rom, err := os.ReadFile(*romPath)
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

	raster := &lcdRaster{}
	recorder := visualize.NewAmplitudeRecorder(4096)

	gb, err := gameboy.New(gameboy.Config{ROM: rom, BootROM: boot}, gameboy.WithLCDSink(raster), gameboy.WithLogger(logger))
	if err != nil {
		logger.Errorf("constructing gameboy: %s", err)
		os.Exit(1)
	}

	a := app.New()
	window := a.NewWindow("dmgcore")

	img := canvas.NewRasterWithPixels(raster.pixelAt)
	img.SetMinSize(fyne.NewSize(480, 432))
	window.SetContent(img)
	window.Resize(fyne.NewSize(480, 432))

	debugWindow := a.NewWindow("dmgcore debug")
	amplitudeImg := canvas.NewImageFromImage(image.NewGray(image.Rect(0, 0, 1, 1)))
	amplitudeImg.FillMode = canvas.ImageFillContain
	refreshBtn := widget.NewButton("Refresh plot", func() {
		var buf bytes.Buffer
		if err := visualize.ChannelPlotPNG(&buf, recorder, 400, 200); err == nil {
			if decoded, _, err := image.Decode(&buf); err == nil {
				amplitudeImg.Image = decoded
				amplitudeImg.Refresh()
			}
		}
	})
	debugWindow.SetContent(container.NewVBox(amplitudeImg, refreshBtn))
	debugWindow.Resize(fyne.NewSize(420, 260))
	debugWindow.Show()

	go func() {
		ticker := time.NewTicker(time.Second / 60)
		defer ticker.Stop()
		for range ticker.C {
			gb.Frame()
			img.Refresh()
		}
	}()

	window.ShowAndRun()
}

// lcdRaster implements gameboy.LCDSink by retaining the last frame as
// a grayscale image canvas.NewRasterWithPixels can sample from.
type lcdRaster struct {
	gray *image.Gray
}

func (r *lcdRaster) Frame(buf *[144][160]uint8) {
	r.gray = scale.ToGray(buf)
}

func (r *lcdRaster) pixelAt(x, y, w, h int) color.Color {
	if r.gray == nil {
		return color.Black
	}
	sx, sy := x*160/w, y*144/h
	return r.gray.GrayAt(sx, sy)
}
