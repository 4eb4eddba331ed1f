package main

import (
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/gogpu/kaleido"
	"github.com/gogpu/kaleido/gpu"
)

func devicesAction(ctx *cli.Context) error {
	setupLogging(ctx)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Substrate", "Adapter", "Kind", "Default"})
	for _, name := range kaleido.Substrates() {
		if name != kaleido.SubstrateWGPU {
			table.Append([]string{name, "-", "host", ""})
			continue
		}
		adapters, err := gpu.Adapters()
		if err != nil {
			table.Append([]string{name, "unavailable: " + err.Error(), "", ""})
			continue
		}
		for _, a := range adapters {
			mark := ""
			if a.Selected {
				mark = "*"
			}
			table.Append([]string{name, a.Name, a.Kind, mark})
		}
	}
	table.Render()
	return nil
}
