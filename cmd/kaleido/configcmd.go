package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/gogpu/kaleido"
	"github.com/gogpu/kaleido/config"
)

func configAction(ctx *cli.Context) error {
	setupLogging(ctx)
	s, err := loadSettings(ctx)
	if err != nil {
		return err
	}
	f := config.FromConfig(s.cfg)
	f.Substrate = s.substrate
	f.Workers = s.workers

	path := ctx.Args().First()
	if path == "" {
		return config.Encode(os.Stdout, &f, config.TOML)
	}
	if err := config.Save(path, &f); err != nil {
		return err
	}
	kaleido.Logger().Info("config written", "path", path)
	return nil
}
