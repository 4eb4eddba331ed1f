package main

import (
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/gogpu/kaleido"
)

func setupLogging(ctx *cli.Context) {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if ctx.GlobalBool("v") {
		opts.Level = slog.LevelDebug
	}
	if ctx.GlobalBool("vv") {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	kaleido.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, opts)))
}
