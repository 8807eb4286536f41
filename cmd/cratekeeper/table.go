package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column is one table column of the listing commands. Numeric columns
// are right-aligned so counts line up.
type column struct {
	title   string
	numeric bool
}

// tabulate renders rows under the given columns in the shared rounded
// style. Short rows are padded with empty cells.
func tabulate(cols []column, rows [][]string) string {
	if len(cols) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(cols))
	configs := make([]table.ColumnConfig, len(cols))
	for i, col := range cols {
		header[i] = col.title
		align := text.AlignLeft
		if col.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, len(cols))
		for i := range cells {
			cells[i] = ""
			if i < len(row) {
				cells[i] = row[i]
			}
		}
		tw.AppendRow(cells)
	}

	return tw.Render()
}
