package present

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"

	"github.com/gogpu/kaleido"
)

// GIFRecorder collects presented frames and writes them as one looping
// animated GIF on Close.
type GIFRecorder struct {
	Path       string
	Compositor Compositor

	// Delay is the per-frame delay in 100ths of a second.
	Delay int

	anim   gif.GIF
	buf    *image.NRGBA
	closed bool
}

// NewGIFRecorder records into path with the given frame delay.
func NewGIFRecorder(path string, delay int, c Compositor) *GIFRecorder {
	if delay <= 0 {
		delay = 4
	}
	return &GIFRecorder{Path: path, Delay: delay, Compositor: c}
}

// Present quantizes f to the Plan9 palette with Floyd-Steinberg dithering
// and appends it.
func (r *GIFRecorder) Present(f *kaleido.Frame, segs []kaleido.Segment) error {
	if r.closed {
		return ErrClosed
	}
	if r.buf == nil || r.buf.Rect.Dx() != f.Width || r.buf.Rect.Dy() != f.Height {
		r.buf = image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	}
	r.Compositor.ComposeInto(r.buf, f, segs)

	pimg := image.NewPaletted(r.buf.Bounds(), palette.Plan9)
	draw.FloydSteinberg.Draw(pimg, pimg.Bounds(), r.buf, image.Point{})
	r.anim.Image = append(r.anim.Image, pimg)
	r.anim.Delay = append(r.anim.Delay, r.Delay)
	return nil
}

// Frames returns the number of frames recorded so far.
func (r *GIFRecorder) Frames() int { return len(r.anim.Image) }

// Close writes the file. Closing an empty recorder writes nothing.
func (r *GIFRecorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if len(r.anim.Image) == 0 {
		return nil
	}
	out, err := os.Create(r.Path)
	if err != nil {
		return fmt.Errorf("present: %w", err)
	}
	if err := gif.EncodeAll(out, &r.anim); err != nil {
		_ = out.Close()
		return fmt.Errorf("present: encode %s: %w", r.Path, err)
	}
	return out.Close()
}
