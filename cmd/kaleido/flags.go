package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli"

	"github.com/gogpu/kaleido"
	"github.com/gogpu/kaleido/config"
)

func pipelineFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "mirrors, m",
			Usage: `mirror lines as "slope,offset;slope,offset;..."`,
		},
		cli.IntFlag{
			Name:  "depth, d",
			Value: kaleido.DefaultMaxDepth,
			Usage: "maximum number of reflections",
		},
		cli.IntFlag{
			Name:  "width",
			Value: kaleido.DefaultWidth,
			Usage: "frame width",
		},
		cli.IntFlag{
			Name:  "height",
			Value: kaleido.DefaultHeight,
			Usage: "frame height",
		},
		cli.StringFlag{
			Name:  "mode",
			Value: kaleido.ModePoint.String(),
			Usage: "display mode: point, trail or density (or 0, 1, 2)",
		},
		cli.BoolFlag{
			Name:  "no-mirrors",
			Usage: "hide the mirror overlay",
		},
		cli.Float64Flag{
			Name:  "decay",
			Value: kaleido.DefaultTrailDecay,
			Usage: "trail mode brightness kept per frame",
		},
		cli.Float64Flag{
			Name:  "saturation",
			Value: kaleido.DefaultDensitySaturation,
			Usage: "density mode hit count at full brightness",
		},
		cli.StringFlag{
			Name:  "substrate, s",
			Value: kaleido.SubstrateAuto,
			Usage: "compute substrate: auto, cpu or wgpu",
		},
		cli.IntFlag{
			Name:  "workers",
			Usage: "cpu substrate worker count (0 = GOMAXPROCS)",
		},
	}
}

// settings is the resolved configuration of one command invocation.
type settings struct {
	cfg       kaleido.Config
	substrate string
	workers   int
}

func (s settings) options() []kaleido.Option {
	return []kaleido.Option{
		kaleido.WithSubstrate(s.substrate),
		kaleido.WithWorkers(s.workers),
	}
}

// loadSettings starts from the defaults, applies the -config file and
// then every flag set on the command line.
func loadSettings(ctx *cli.Context) (settings, error) {
	s := settings{cfg: kaleido.DefaultConfig(), substrate: kaleido.SubstrateAuto}
	if path := ctx.GlobalString("config"); path != "" {
		cfg, f, err := config.Load(path)
		if err != nil {
			return s, err
		}
		s.cfg = cfg
		if f.Substrate != "" {
			s.substrate = f.Substrate
		}
		s.workers = f.Workers
	}

	if ctx.IsSet("mirrors") {
		ms, err := parseMirrors(ctx.String("mirrors"))
		if err != nil {
			return s, err
		}
		s.cfg.Mirrors = ms
	}
	if ctx.IsSet("depth") {
		s.cfg.MaxDepth = ctx.Int("depth")
	}
	if ctx.IsSet("width") {
		s.cfg.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		s.cfg.Height = ctx.Int("height")
	}
	if ctx.IsSet("mode") {
		m, err := kaleido.ParseDisplayMode(ctx.String("mode"))
		if err != nil {
			return s, err
		}
		s.cfg.Mode = m
	}
	if ctx.Bool("no-mirrors") {
		s.cfg.ShowMirrors = false
	}
	if ctx.IsSet("decay") {
		s.cfg.TrailDecay = float32(ctx.Float64("decay"))
	}
	if ctx.IsSet("saturation") {
		s.cfg.DensitySaturation = float32(ctx.Float64("saturation"))
	}
	if ctx.IsSet("substrate") {
		s.substrate = ctx.String("substrate")
	}
	if ctx.IsSet("workers") {
		s.workers = ctx.Int("workers")
	}
	return s, s.cfg.Validate()
}

// parseMirrors reads "slope,offset;slope,offset".
func parseMirrors(s string) ([]kaleido.Mirror, error) {
	var out []kaleido.Mirror
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a, b, ok := strings.Cut(part, ",")
		if !ok {
			return nil, fmt.Errorf("mirror %q: want slope,offset", part)
		}
		slope, err := strconv.ParseFloat(strings.TrimSpace(a), 32)
		if err != nil {
			return nil, fmt.Errorf("mirror %q: %w", part, err)
		}
		offset, err := strconv.ParseFloat(strings.TrimSpace(b), 32)
		if err != nil {
			return nil, fmt.Errorf("mirror %q: %w", part, err)
		}
		out = append(out, kaleido.Mirror{Slope: float32(slope), Offset: float32(offset)})
	}
	return out, nil
}
