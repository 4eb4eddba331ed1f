package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/gogpu/kaleido"
	"github.com/gogpu/kaleido/input"
	"github.com/gogpu/kaleido/present"
)

func renderFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "frames, n",
			Value: 1,
			Usage: "number of frames to render",
		},
		cli.StringFlag{
			Name:  "cursor",
			Value: "center",
			Usage: "cursor path: center, fixed:X,Y, orbit:R[,PERIOD] or sweep:X0,Y0,X1,Y1",
		},
		cli.StringFlag{
			Name:  "out, o",
			Value: "kaleido.png",
			Usage: "output .png, .gif or directory",
		},
		cli.IntFlag{
			Name:  "delay",
			Value: 4,
			Usage: "gif frame delay in 1/100 s",
		},
		cli.Float64Flag{
			Name:  "glow",
			Usage: "bloom radius in pixels (0 = off)",
		},
		cli.BoolFlag{
			Name:  "hud",
			Usage: "print the status line on each frame",
		},
		cli.BoolFlag{
			Name:  "stats",
			Usage: "print frame statistics when done",
		},
	}
}

func renderAction(ctx *cli.Context) error {
	setupLogging(ctx)
	s, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	cfg := s.cfg

	p, err := kaleido.NewPipeline(cfg, s.options()...)
	if err != nil {
		return err
	}
	defer p.Close()

	src, err := input.Parse(ctx.String("cursor"), cfg.Width, cfg.Height, ctx.Int("frames"))
	if err != nil {
		return err
	}

	comp := present.Compositor{Glow: ctx.Float64("glow")}
	var hud *present.HUD
	if ctx.Bool("hud") {
		hud = present.NewHUD(p)
		comp.HUD = hud
	}
	surf, err := openSurface(ctx.String("out"), ctx.Int("delay"), comp)
	if err != nil {
		return err
	}

	n, err := renderFrames(p, src, surf, hud)
	if cerr := surf.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	kaleido.Logger().Info("render done", "frames", n, "out", ctx.String("out"), "substrate", p.Substrate())

	if ctx.Bool("stats") {
		displayFrameStats(p)
	}
	return nil
}

// renderFrames renders until src runs out and returns the frame count.
func renderFrames(p *kaleido.Pipeline, src input.Source, surf present.Surface, hud *present.HUD) (int, error) {
	cfg := p.Config()
	frame := kaleido.NewFrame(cfg.Width, cfg.Height)
	n := 0
	for {
		x, y, ok := src.Cursor(n)
		if !ok {
			return n, nil
		}
		if err := p.RenderTo(kaleido.CursorToNDC(x, y, cfg.Width, cfg.Height), frame); err != nil {
			return n, fmt.Errorf("frame %d: %w", n, err)
		}
		if hud != nil {
			hud.Update(p)
		}
		if err := surf.Present(frame, p.Segments()); err != nil {
			return n, fmt.Errorf("frame %d: %w", n, err)
		}
		n++
	}
}

func openSurface(out string, delay int, comp present.Compositor) (present.Surface, error) {
	switch strings.ToLower(filepath.Ext(out)) {
	case ".gif":
		return present.NewGIFRecorder(out, delay, comp), nil
	case ".png":
		return &pngFile{path: out, comp: comp}, nil
	}
	return present.NewPNGSequence(out, "frame", comp)
}

// pngFile overwrites one PNG with every frame, keeping the last.
type pngFile struct {
	path string
	comp present.Compositor
}

func (f *pngFile) Present(fr *kaleido.Frame, segs []kaleido.Segment) error {
	return present.WritePNG(f.path, f.comp.Compose(fr, segs))
}

func (f *pngFile) Close() error { return nil }

func displayFrameStats(p *kaleido.Pipeline) {
	st := p.Stats()
	g := p.Geometry()
	cfg := p.Config()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Stat", "Value"})
	table.Append([]string{"Substrate", p.Substrate()})
	table.Append([]string{"Mirrors", fmt.Sprint(len(cfg.Mirrors))})
	table.Append([]string{"Depth", fmt.Sprint(cfg.MaxDepth)})
	table.Append([]string{"Mode", cfg.Mode.String()})
	table.Append([]string{"Points", printer.Sprintf("%d", p.Table().Len())})
	table.Append([]string{"Workgroups", g.String()})
	table.Append([]string{"Frames", fmt.Sprint(st.Frames)})
	table.Append([]string{"Last frame", st.Last.Round(time.Microsecond).String()})
	table.Append([]string{"Average frame", st.Average().Round(time.Microsecond).String()})
	table.SetFooter([]string{"FPS", fmt.Sprintf("%.1f", st.FPS())})
	table.Render()
}
