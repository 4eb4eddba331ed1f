package present

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chewxy/math32"
	"golang.org/x/image/vector"

	"github.com/gogpu/kaleido"
)

// SegmentPixels maps a segment from normalized device coordinates to
// pixel space on a w x h image, with +Y down.
func SegmentPixels(s kaleido.Segment, w, h int) (x0, y0, x1, y1 float32) {
	fw, fh := float32(w), float32(h)
	x0 = (s.A.X + 1) * 0.5 * fw
	y0 = (1 - s.A.Y) * 0.5 * fh
	x1 = (s.B.X + 1) * 0.5 * fw
	y1 = (1 - s.B.Y) * 0.5 * fh
	return
}

// DrawSegments strokes each segment as a width-wide quad with col.
func DrawSegments(dst draw.Image, segs []kaleido.Segment, col color.Color, width float32) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	src := image.NewUniform(col)
	for _, s := range segs {
		x0, y0, x1, y1 := SegmentPixels(s, w, h)
		dx, dy := x1-x0, y1-y0
		l := math32.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		// Offset along the unit normal by half the width.
		nx, ny := -dy/l*width/2, dx/l*width/2

		r := vector.NewRasterizer(w, h)
		r.MoveTo(x0+nx, y0+ny)
		r.LineTo(x1+nx, y1+ny)
		r.LineTo(x1-nx, y1-ny)
		r.LineTo(x0-nx, y0-ny)
		r.ClosePath()
		r.Draw(dst, b, src, image.Point{})
	}
}
