// Package viewer shows a pipeline in a desktop window and feeds it the
// live mouse position.
//
// Escape closes the window. R resets trail and density state. M toggles
// the mirror overlay and H the HUD.
package viewer

import (
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/kaleido"
	"github.com/gogpu/kaleido/present"
)

// Options configure the window.
type Options struct {
	// Title is the window title. Empty uses "kaleido".
	Title string

	// Scale multiplies the window size. Zero or negative means 1.
	Scale int

	// TPS is the update rate. Zero uses 60.
	TPS int

	// Glow is passed to the compositor.
	Glow float64

	// HUD starts with the status line shown.
	HUD bool
}

// Viewer is an ebiten game driving a Pipeline. It also implements
// present.Surface, so scripted renders can be watched live.
type Viewer struct {
	p    *kaleido.Pipeline
	opts Options

	comp     present.Compositor
	hud      *present.HUD
	overlay  bool
	showHUD  bool
	frame    *kaleido.Frame
	segs     []kaleido.Segment
	img      *image.NRGBA
	tex      *ebiten.Image
	cursor   kaleido.Point
	hasFrame bool
	err      error
}

var _ present.Surface = (*Viewer)(nil)

// New prepares a viewer for p. The window opens in Run.
func New(p *kaleido.Pipeline, opts Options) *Viewer {
	if opts.Title == "" {
		opts.Title = "kaleido"
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.TPS <= 0 {
		opts.TPS = 60
	}
	cfg := p.Config()
	return &Viewer{
		p:       p,
		opts:    opts,
		comp:    present.Compositor{Glow: opts.Glow},
		hud:     present.NewHUD(p),
		overlay: cfg.ShowMirrors,
		showHUD: opts.HUD,
		frame:   kaleido.NewFrame(cfg.Width, cfg.Height),
		img:     image.NewNRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
	}
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() error {
	cfg := v.p.Config()
	ebiten.SetWindowTitle(v.opts.Title)
	ebiten.SetWindowSize(cfg.Width*v.opts.Scale, cfg.Height*v.opts.Scale)
	ebiten.SetTPS(v.opts.TPS)
	kaleido.Logger().Info("viewer: window open",
		"size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"substrate", v.p.Substrate())

	err := ebiten.RunGame(v)
	if errors.Is(err, ebiten.Termination) {
		err = nil
	}
	if err == nil {
		err = v.err
	}
	return err
}

// Update handles keys and renders one frame at the current cursor.
func (v *Viewer) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := v.p.Reset(); err != nil {
			v.err = err
			return ebiten.Termination
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		v.overlay = !v.overlay
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.showHUD = !v.showHUD
	}

	cfg := v.p.Config()
	x, y := ebiten.CursorPosition()
	if x >= 0 && y >= 0 && x < cfg.Width && y < cfg.Height {
		v.cursor = kaleido.CursorToNDC(float64(x), float64(y), cfg.Width, cfg.Height)
	}
	if err := v.p.RenderTo(v.cursor, v.frame); err != nil {
		v.err = err
		return ebiten.Termination
	}
	v.hud.Update(v.p)
	return v.Present(v.frame, v.mirrorSegments())
}

func (v *Viewer) mirrorSegments() []kaleido.Segment {
	if !v.overlay {
		return nil
	}
	return v.p.Mirrors().Segments()
}

// Present composes f for the next Draw.
func (v *Viewer) Present(f *kaleido.Frame, segs []kaleido.Segment) error {
	if f.Width != v.img.Rect.Dx() || f.Height != v.img.Rect.Dy() {
		return fmt.Errorf("viewer: frame is %dx%d, window is %dx%d",
			f.Width, f.Height, v.img.Rect.Dx(), v.img.Rect.Dy())
	}
	v.comp.HUD = nil
	if v.showHUD {
		v.comp.HUD = v.hud
	}
	v.comp.ComposeInto(v.img, f, segs)
	v.hasFrame = true
	return nil
}

// Close is a no-op; the window closes with Escape.
func (v *Viewer) Close() error { return nil }

// Draw uploads the composed image.
func (v *Viewer) Draw(screen *ebiten.Image) {
	if !v.hasFrame {
		return
	}
	if v.tex == nil {
		v.tex = ebiten.NewImage(v.img.Rect.Dx(), v.img.Rect.Dy())
	}
	v.tex.WritePixels(v.img.Pix)
	screen.DrawImage(v.tex, nil)
}

// Layout keeps the logical screen at the pipeline size.
func (v *Viewer) Layout(_, _ int) (int, int) {
	cfg := v.p.Config()
	return cfg.Width, cfg.Height
}
