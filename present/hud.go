package present

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/kaleido"
)

// HUD is the status line drawn over the image.
type HUD struct {
	Mirrors   int
	Depth     int
	Points    int
	FPS       float64
	Mode      kaleido.DisplayMode
	Substrate string

	// Size is the font size in pixels. Zero uses 13.
	Size float64
}

// NewHUD fills a HUD from a pipeline's configuration and stats.
func NewHUD(p *kaleido.Pipeline) *HUD {
	cfg := p.Config()
	h := &HUD{}
	h.Update(p)
	h.Mirrors = len(cfg.Mirrors)
	h.Depth = cfg.MaxDepth
	h.Mode = cfg.Mode
	return h
}

// Update refreshes the fields that change between frames.
func (h *HUD) Update(p *kaleido.Pipeline) {
	h.Points = p.Table().Len()
	h.FPS = p.Stats().FPS()
	h.Substrate = p.Substrate()
}

var printer = message.NewPrinter(language.English)

// Text returns the status line.
func (h *HUD) Text() string {
	s := printer.Sprintf("mirrors %d  depth %d  points %d  %s", h.Mirrors, h.Depth, h.Points, h.Mode)
	if h.Substrate != "" {
		s += "  " + h.Substrate
	}
	if h.FPS > 0 {
		s += fmt.Sprintf("  %.1f fps", h.FPS)
	}
	return s
}

var (
	monoOnce sync.Once
	monoFont *opentype.Font
	monoErr  error
)

func hudFont() (*opentype.Font, error) {
	monoOnce.Do(func() {
		monoFont, monoErr = opentype.Parse(gomono.TTF)
	})
	return monoFont, monoErr
}

// Draw prints the HUD on a dark band at the top of dst.
func (h *HUD) Draw(dst draw.Image) {
	f, err := hudFont()
	if err != nil {
		return
	}
	size := h.Size
	if size <= 0 {
		size = 13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return
	}
	defer func() {
		_ = face.Close()
	}()

	m := face.Metrics()
	pad := int(size / 3)
	band := image.Rect(0, 0, dst.Bounds().Dx(), (m.Height.Ceil())+2*pad).Add(dst.Bounds().Min)
	draw.Draw(dst, band, image.NewUniform(color.NRGBA{A: 0x99}), image.Point{}, draw.Over)

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(band.Min.X+pad, band.Min.Y+pad+m.Ascent.Ceil()),
	}
	d.DrawString(h.Text())
}
