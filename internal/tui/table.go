package tui

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"mediadedup/internal/processor"
	"mediadedup/pkg/imgutil"
)

// RenderCounts draws per-format totals and duplicates in report order.
func RenderCounts(counts processor.Counts) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Format", "Total", "Duplicates"})

	var total, dups int
	for _, kind := range imgutil.Kinds {
		c := counts[kind]
		total += c.Total
		dups += c.Duplicates
		dupCell := strconv.Itoa(c.Duplicates)
		if !kind.Fingerprinted() {
			dupCell = "-"
		}
		tw.AppendRow(table.Row{kind.String(), c.Total, dupCell})
	}
	tw.AppendFooter(table.Row{"all", total, dups})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}
