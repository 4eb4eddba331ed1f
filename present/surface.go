// Package present turns resolved frames into something a person can look
// at: a composited 8-bit image with the mirror overlay, a HUD line and an
// optional glow, written to PNG files, an animated GIF, or a window.
package present

import (
	"errors"

	"github.com/gogpu/kaleido"
)

// ErrClosed is returned by Present after Close.
var ErrClosed = errors.New("present: surface closed")

// Surface receives one frame per rendered cursor position. segs are the
// mirror lines to draw over the frame and may be nil.
type Surface interface {
	Present(f *kaleido.Frame, segs []kaleido.Segment) error
	Close() error
}

// Discard is a Surface that drops every frame.
var Discard Surface = discard{}

type discard struct{}

func (discard) Present(*kaleido.Frame, []kaleido.Segment) error { return nil }
func (discard) Close() error                                    { return nil }
