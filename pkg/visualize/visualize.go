// Package visualize renders debug artifacts a host may request at any
// time without affecting core stepping: a tile-data PNG dump and an
// APU channel amplitude plot.
package visualize

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// TileDataPNG renders the 384 8x8 tiles packed in VRAM's 0x8000-0x97FF
// tile data area as a 16-tiles-wide grayscale grid, written as PNG to
// w. vram must be the PPU's raw 0x2000-byte VRAM bank.
func TileDataPNG(w io.Writer, vram *[0x2000]uint8) error {
	const tilesPerRow = 16
	const tileCount = 384
	rows := (tileCount + tilesPerRow - 1) / tilesPerRow

	img := image.NewGray(image.Rect(0, 0, tilesPerRow*8, rows*8))
	for tile := 0; tile < tileCount; tile++ {
		base := tile * 16
		tx, ty := (tile%tilesPerRow)*8, (tile/tilesPerRow)*8
		for row := 0; row < 8; row++ {
			lo := vram[base+row*2]
			hi := vram[base+row*2+1]
			for bit := 0; bit < 8; bit++ {
				shift := 7 - bit
				colorID := (hi>>shift&1)<<1 | (lo >> shift & 1)
				img.SetGray(tx+bit, ty+row, color.Gray{Y: shade[colorID]})
			}
		}
	}

	return png.Encode(w, img)
}

var shade = [4]uint8{0xFF, 0xAA, 0x55, 0x00}

// AmplitudeRecorder is a ring buffer of per-channel amplitude samples,
// optionally attached to the APU via a debug hook so a host can later
// render ChannelPlotPNG without affecting normal stepping.
type AmplitudeRecorder struct {
	capacity int
	samples  [4][]uint8
	pos      int
	filled   bool
}

// NewAmplitudeRecorder returns a recorder holding the last capacity
// samples per channel.
func NewAmplitudeRecorder(capacity int) *AmplitudeRecorder {
	r := &AmplitudeRecorder{capacity: capacity}
	for i := range r.samples {
		r.samples[i] = make([]uint8, capacity)
	}
	return r
}

// Record appends one amplitude sample (0..15) per channel.
func (r *AmplitudeRecorder) Record(ch1, ch2, ch3, ch4 uint8) {
	r.samples[0][r.pos] = ch1
	r.samples[1][r.pos] = ch2
	r.samples[2][r.pos] = ch3
	r.samples[3][r.pos] = ch4
	r.pos++
	if r.pos >= r.capacity {
		r.pos = 0
		r.filled = true
	}
}

// Series returns channel idx's samples in chronological order.
func (r *AmplitudeRecorder) Series(idx int) []uint8 {
	if !r.filled {
		return append([]uint8(nil), r.samples[idx][:r.pos]...)
	}
	out := make([]uint8, 0, r.capacity)
	out = append(out, r.samples[idx][r.pos:]...)
	out = append(out, r.samples[idx][:r.pos]...)
	return out
}
