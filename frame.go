package kaleido

import (
	"encoding/binary"
	"image"
	"image/color"
	"math"
)

// Frame is a resolved RGBA float image, row 0 at the top.
type Frame struct {
	Width, Height int

	// Pix holds 4 float32 components per pixel, row-major.
	Pix []float32
}

// NewFrame allocates a width x height frame.
func NewFrame(width, height int) *Frame {
	return &Frame{Width: width, Height: height, Pix: make([]float32, 4*width*height)}
}

// decode fills f from little-endian float32 words.
func (f *Frame) decode(b []byte) {
	for i := range f.Pix {
		f.Pix[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
}

// RGBA returns the color of pixel (x, y).
func (f *Frame) RGBA(x, y int) Color {
	i := 4 * (y*f.Width + x)
	return Color{f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]}
}

// Image converts the frame to an 8-bit image.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	f.Draw(img)
	return img
}

// Draw writes the frame into img, which must be at least as large.
func (f *Frame) Draw(img *image.NRGBA) {
	for y := range f.Height {
		row := img.Pix[y*img.Stride:]
		for x := range f.Width {
			c := f.RGBA(x, y)
			row[4*x+0] = to8(c[0])
			row[4*x+1] = to8(c[1])
			row[4*x+2] = to8(c[2])
			row[4*x+3] = to8(c[3])
		}
	}
}

// NRGBA returns pixel (x, y) as an 8-bit color.
func (f *Frame) NRGBA(x, y int) color.NRGBA {
	c := f.RGBA(x, y)
	return color.NRGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: to8(c[3])}
}

func to8(v float32) uint8 {
	switch {
	case !(v > 0):
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}
