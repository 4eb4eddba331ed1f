package present

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/kaleido"
)

func solidFrame(w, h int, c kaleido.Color) *kaleido.Frame {
	f := kaleido.NewFrame(w, h)
	for i := 0; i < len(f.Pix); i += 4 {
		copy(f.Pix[i:i+4], c[:])
	}
	return f
}

var (
	black = kaleido.Color{0, 0, 0, 1}
	white = kaleido.Color{1, 1, 1, 1}
)

// =============================================================================
// Compositor Tests
// =============================================================================

func TestCompose_PlainFrame(t *testing.T) {
	f := solidFrame(4, 3, kaleido.Color{1, 0, 0, 1})
	var c Compositor
	img := c.Compose(f, nil)
	require.Equal(t, image.Rect(0, 0, 4, 3), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(2, 1))
}

func TestSegmentPixels(t *testing.T) {
	s := kaleido.Segment{A: kaleido.Pt(-1, 1), B: kaleido.Pt(1, -1)}
	x0, y0, x1, y1 := SegmentPixels(s, 100, 50)
	assert.InDelta(t, 0, x0, 1e-6)
	assert.InDelta(t, 0, y0, 1e-6)
	assert.InDelta(t, 100, x1, 1e-6)
	assert.InDelta(t, 50, y1, 1e-6)
}

func TestCompose_Overlay(t *testing.T) {
	f := solidFrame(32, 32, black)
	c := Compositor{OverlayColor: color.NRGBA{G: 255, A: 255}, LineWidth: 2}
	segs := []kaleido.Segment{{A: kaleido.Pt(-1, 0), B: kaleido.Pt(1, 0)}}
	img := c.Compose(f, segs)

	mid := img.NRGBAAt(16, 16)
	assert.Greater(t, mid.G, uint8(128), "line pixel should be green")
	assert.Equal(t, uint8(0), img.NRGBAAt(16, 2).G, "pixel far from the line")
	assert.Equal(t, uint8(0), img.NRGBAAt(16, 29).G, "pixel far from the line")
}

func TestCompose_DefaultOverlayColor(t *testing.T) {
	f := solidFrame(16, 16, black)
	var c Compositor
	img := c.Compose(f, []kaleido.Segment{{A: kaleido.Pt(0, -1), B: kaleido.Pt(0, 1)}})
	assert.Greater(t, img.NRGBAAt(8, 8).B, uint8(0))
}

func TestGlow_Spreads(t *testing.T) {
	f := solidFrame(9, 9, black)
	i := 4 * (4*9 + 4)
	copy(f.Pix[i:i+4], white[:])
	src := f.Image()

	out := Glow(src, 2)
	assert.Greater(t, out.NRGBAAt(5, 4).R, uint8(0), "neighbor should pick up glow")
	assert.Equal(t, uint8(255), out.NRGBAAt(4, 4).R)
	assert.Equal(t, uint8(0), src.NRGBAAt(5, 4).R, "source must be untouched")
}

// =============================================================================
// HUD Tests
// =============================================================================

func TestHUD_Text(t *testing.T) {
	h := &HUD{Mirrors: 3, Depth: 12, Points: 1234567, Mode: kaleido.ModeTrail, Substrate: "cpu", FPS: 59.94}
	text := h.Text()
	assert.Contains(t, text, "mirrors 3")
	assert.Contains(t, text, "depth 12")
	assert.Contains(t, text, "points 1,234,567")
	assert.Contains(t, text, "trail")
	assert.Contains(t, text, "cpu")
	assert.True(t, strings.HasSuffix(text, "59.9 fps"), text)
}

func TestHUD_NoFPSBeforeFirstFrame(t *testing.T) {
	h := &HUD{Mirrors: 2, Depth: 1, Points: 3}
	assert.NotContains(t, h.Text(), "fps")
}

func TestHUD_Draw(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 400, 40))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	h := &HUD{Mirrors: 3, Depth: 12, Points: 10}
	h.Draw(img)

	band := img.NRGBAAt(399, 2)
	assert.Less(t, band.R, uint8(255), "band should darken the top row")
	assert.Equal(t, uint8(255), img.NRGBAAt(399, 39).R, "below the band is untouched")
}

// =============================================================================
// Writer Tests
// =============================================================================

func TestPNGSequence(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	s, err := NewPNGSequence(dir, "", Compositor{})
	require.NoError(t, err)

	f := solidFrame(8, 6, white)
	require.NoError(t, s.Present(f, nil))
	require.NoError(t, s.Present(f, nil))
	assert.Equal(t, 2, s.Frames())
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Present(f, nil), ErrClosed)

	in, err := os.Open(filepath.Join(dir, "frame_00001.png"))
	require.NoError(t, err)
	defer in.Close()
	cfg, format, err := image.DecodeConfig(in)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 8, cfg.Width)
	assert.Equal(t, 6, cfg.Height)
}

func TestGIFRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	r := NewGIFRecorder(path, 0, Compositor{})
	assert.Equal(t, 4, r.Delay)

	for _, c := range []kaleido.Color{black, white, black} {
		require.NoError(t, r.Present(solidFrame(10, 10, c), nil))
	}
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	in, err := os.Open(path)
	require.NoError(t, err)
	defer in.Close()
	g, err := gif.DecodeAll(in)
	require.NoError(t, err)
	assert.Len(t, g.Image, 3)
	assert.Equal(t, []int{4, 4, 4}, g.Delay)
}

func TestGIFRecorder_EmptyWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "none.gif")
	r := NewGIFRecorder(path, 5, Compositor{})
	require.NoError(t, r.Close())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDiscard(t *testing.T) {
	assert.NoError(t, Discard.Present(solidFrame(1, 1, black), nil))
	assert.NoError(t, Discard.Close())
}
