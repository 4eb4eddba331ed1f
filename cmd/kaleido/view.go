package main

import (
	"github.com/urfave/cli"

	"github.com/gogpu/kaleido"
	"github.com/gogpu/kaleido/viewer"
)

func viewFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "scale",
			Value: 1,
			Usage: "window size multiplier",
		},
		cli.Float64Flag{
			Name:  "glow",
			Usage: "bloom radius in pixels (0 = off)",
		},
		cli.BoolFlag{
			Name:  "hud",
			Usage: "show the status line (toggle with H)",
		},
	}
}

func viewAction(ctx *cli.Context) error {
	setupLogging(ctx)
	s, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	p, err := kaleido.NewPipeline(s.cfg, s.options()...)
	if err != nil {
		return err
	}
	defer p.Close()

	v := viewer.New(p, viewer.Options{
		Scale: ctx.Int("scale"),
		Glow:  ctx.Float64("glow"),
		HUD:   ctx.Bool("hud"),
	})
	return v.Run()
}
