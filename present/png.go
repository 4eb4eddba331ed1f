package present

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/gogpu/kaleido"
)

// PNGSequence writes every presented frame to Dir as
// <Prefix>_00000.png, <Prefix>_00001.png and so on.
type PNGSequence struct {
	Dir        string
	Prefix     string
	Compositor Compositor

	n      int
	buf    *image.NRGBA
	closed bool
}

// NewPNGSequence creates dir if needed.
func NewPNGSequence(dir, prefix string, c Compositor) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("present: create %s: %w", dir, err)
	}
	if prefix == "" {
		prefix = "frame"
	}
	return &PNGSequence{Dir: dir, Prefix: prefix, Compositor: c}, nil
}

// Present composes f and writes the next file.
func (s *PNGSequence) Present(f *kaleido.Frame, segs []kaleido.Segment) error {
	if s.closed {
		return ErrClosed
	}
	if s.buf == nil || s.buf.Rect.Dx() != f.Width || s.buf.Rect.Dy() != f.Height {
		s.buf = image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	}
	s.Compositor.ComposeInto(s.buf, f, segs)
	path := filepath.Join(s.Dir, fmt.Sprintf("%s_%05d.png", s.Prefix, s.n))
	if err := WritePNG(path, s.buf); err != nil {
		return err
	}
	s.n++
	return nil
}

// Frames returns the number of files written.
func (s *PNGSequence) Frames() int { return s.n }

// Close stops the sequence.
func (s *PNGSequence) Close() error {
	s.closed = true
	return nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("present: %w", err)
	}
	if err := png.Encode(out, img); err != nil {
		_ = out.Close()
		return fmt.Errorf("present: encode %s: %w", path, err)
	}
	return out.Close()
}
