package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/kaleido"
)

var printer = message.NewPrinter(language.English)

func tableFlags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:  "mirrors, m",
			Value: 3,
			Usage: "mirror count",
		},
		cli.IntFlag{
			Name:  "depth, d",
			Value: kaleido.DefaultMaxDepth,
			Usage: "maximum number of reflections",
		},
		cli.IntFlag{
			Name:  "codes",
			Usage: "also list the first N codes with their mirror sequences",
		},
	}
}

func tableAction(ctx *cli.Context) error {
	setupLogging(ctx)
	t, err := kaleido.Enumerate(ctx.Int("mirrors"), ctx.Int("depth"))
	if err != nil {
		return err
	}
	writeBlocks(os.Stdout, t)
	if n := ctx.Int("codes"); n > 0 {
		fmt.Println()
		writeCodes(os.Stdout, t, n)
	}
	return nil
}

// writeBlocks prints one row per depth block.
func writeBlocks(w io.Writer, t *kaleido.PathTable) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Depth", "Offset", "Codes"})
	for k := 0; k <= t.MaxDepth(); k++ {
		table.Append([]string{
			strconv.Itoa(k),
			printer.Sprintf("%d", kaleido.BlockOffset(t.Mirrors(), k)),
			printer.Sprintf("%d", len(t.Block(k))),
		})
	}
	g := kaleido.SizeDispatch(t.Len())
	table.SetFooter([]string{"Total", g.String(), printer.Sprintf("%d", t.Len())})
	table.Render()
}

// writeCodes prints the first n codes and the mirrors each one applies.
func writeCodes(w io.Writer, t *kaleido.PathTable, n int) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Index", "Code", "Depth", "Mirrors"})
	m := t.Mirrors()
	for i := 0; i < n && i < t.Len(); i++ {
		c := t.At(i)
		seq := c.Sequence(m)
		parts := make([]string, len(seq))
		for j, s := range seq {
			parts[j] = strconv.Itoa(s)
		}
		mirrors := strings.Join(parts, " ")
		if len(seq) == 0 {
			mirrors = "-"
		}
		table.Append([]string{strconv.Itoa(i), strconv.Itoa(int(c)), strconv.Itoa(c.Depth(m)), mirrors})
	}
	table.Render()
}
