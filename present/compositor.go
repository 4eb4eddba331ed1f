package present

import (
	"image"
	"image/color"

	"github.com/gogpu/kaleido"
)

// Compositor builds the displayed image from a frame.
//
// Layers are drawn in order: frame, glow, mirror overlay, HUD.
type Compositor struct {
	// OverlayColor is the mirror line color. A zero value uses
	// DefaultOverlayColor.
	OverlayColor color.NRGBA

	// LineWidth is the overlay line width in pixels. Zero uses 1.5.
	LineWidth float32

	// Glow is the Gaussian radius of the bloom pass in pixels. Zero
	// disables it.
	Glow float64

	// HUD, when non-nil, is printed in the top-left corner.
	HUD *HUD
}

// DefaultOverlayColor is a translucent cyan.
var DefaultOverlayColor = color.NRGBA{R: 0x40, G: 0xc0, B: 0xff, A: 0xc0}

// Compose renders f with segs into a new image.
func (c *Compositor) Compose(f *kaleido.Frame, segs []kaleido.Segment) *image.NRGBA {
	dst := f.Image()
	c.ComposeInto(dst, f, segs)
	return dst
}

// ComposeInto renders f with segs into dst, which must match f's size.
func (c *Compositor) ComposeInto(dst *image.NRGBA, f *kaleido.Frame, segs []kaleido.Segment) {
	f.Draw(dst)
	if c.Glow > 0 {
		applyGlow(dst, c.Glow)
	}
	if len(segs) > 0 {
		col := c.OverlayColor
		if col == (color.NRGBA{}) {
			col = DefaultOverlayColor
		}
		w := c.LineWidth
		if w <= 0 {
			w = 1.5
		}
		DrawSegments(dst, segs, col, w)
	}
	if c.HUD != nil {
		c.HUD.Draw(dst)
	}
}
