// Package scale upscales the PPU's 160x144 indexed frame buffer to an
// arbitrary output size, for hosts presenting the frame in a larger
// window than native resolution.
package scale

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// Shade maps a 2-bit DMG color index (0..3) to a grayscale byte, 0
// being the lightest (a real DMG's palette runs light-to-dark as the
// index increases).
var Shade = [4]uint8{0xFF, 0xAA, 0x55, 0x00}

// ToGray converts an indexed frame buffer to a grayscale image using
// Shade, suitable as a draw.Image source for Nearest or Smooth.
func ToGray(frame *[144][160]uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 160, 144))
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			img.SetGray(x, y, color.Gray{Y: Shade[frame[y][x]&0x03]})
		}
	}
	return img
}

// Nearest performs integer-ratio nearest-neighbor upscaling of frame
// into an image of size w x h, preserving the DMG's hard pixel edges.
func Nearest(frame *[144][160]uint8, w, h int) *image.Gray {
	src := ToGray(frame)
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Smooth performs bilinear-filtered upscaling, trading the DMG's sharp
// pixel grid for a softer enlarged image.
func Smooth(frame *[144][160]uint8, w, h int) *image.Gray {
	src := ToGray(frame)
	dst := image.NewGray(image.Rect(0, 0, w, h))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
