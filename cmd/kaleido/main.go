// Command kaleido renders the reflections of a cursor in a set of mirrors.
//
// Usage:
//
//	kaleido view                       # interactive window
//	kaleido render -frames 120 -cursor orbit:200 -out orbit.gif
//	kaleido table -mirrors 3 -depth 3  # path table layout
//	kaleido devices                    # substrates and GPU adapters
//	kaleido config out.toml            # write the effective settings
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	// Registers the wgpu substrate.
	_ "github.com/gogpu/kaleido/gpu"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "kaleido:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "kaleido"
	app.Usage = "render multi-bounce mirror reflections of a cursor"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable debug logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable debug logging with source locations",
		},
		cli.StringFlag{
			Name:  "config, c",
			Usage: "load settings from a .toml or .yaml file",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scripted cursor path headlessly",
			Description: `
Render one frame per cursor position produced by -cursor and write them to
-out. An -out ending in .gif records an animated GIF, one ending in .png
keeps the last frame, anything else is a directory of numbered PNG files.`,
			Flags:  append(pipelineFlags(), renderFlags()...),
			Action: renderAction,
		},
		{
			Name:   "view",
			Usage:  "open an interactive window driven by the mouse",
			Flags:  append(pipelineFlags(), viewFlags()...),
			Action: viewAction,
		},
		{
			Name:   "table",
			Usage:  "print the path table layout",
			Flags:  tableFlags(),
			Action: tableAction,
		},
		{
			Name:   "devices",
			Usage:  "list compute substrates and GPU adapters",
			Action: devicesAction,
		},
		{
			Name:      "config",
			Usage:     "write the effective settings as TOML or YAML",
			ArgsUsage: "[file.toml|file.yaml]",
			Flags:     pipelineFlags(),
			Action:    configAction,
		},
	}
	return app
}
