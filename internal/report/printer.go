// Package report renders the processor table for the console.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/IshaanNene/cpubench/internal/types"
)

// StylePlain separates columns with a single space and draws no borders.
var StylePlain = table.Style{
	Name: "StylePlain",
	Box: table.BoxStyle{
		MiddleVertical: " ",
	},
	Format: table.FormatOptions{
		Footer: text.FormatDefault,
		Header: text.FormatDefault,
		Row:    text.FormatDefault,
	},
	Options: table.Options{
		DrawBorder:      false,
		SeparateColumns: true,
		SeparateFooter:  false,
		SeparateHeader:  false,
		SeparateRows:    false,
	},
}

// Printer writes the processor table to a console.
type Printer struct {
	w     io.Writer
	style table.Style
}

// NewPrinter creates a Printer using StylePlain.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, style: StylePlain}
}

// SetStyle switches the table style, e.g. to table.StyleRounded.
func (p *Printer) SetStyle(style table.Style) {
	p.style = style
}

// Render lays out the given columns of each record. Every column is as wide
// as its longest cell, the first column is left aligned, the last right
// aligned and the rest centered. An odd leftover space in a centered cell
// goes to its right.
func (p *Printer) Render(columns []string, records []*types.Record) string {
	rows := make([][]string, len(records))
	for i, rec := range records {
		rows[i] = rec.Row(columns)
	}
	header := make(table.Row, len(columns))
	for col, name := range columns {
		header[col] = name
		if col == 0 || col == len(columns)-1 {
			continue
		}
		width := text.RuneWidthWithoutEscSequences(name)
		for _, row := range rows {
			width = max(width, text.RuneWidthWithoutEscSequences(row[col]))
		}
		header[col] = center(name, width)
		for _, row := range rows {
			row[col] = center(row[col], width)
		}
	}

	t := table.NewWriter()
	t.SetStyle(p.style)
	t.AppendHeader(header)

	for _, values := range rows {
		row := make(table.Row, len(values))
		for i, v := range values {
			row[i] = v
		}
		t.AppendRow(row)
	}

	configs := make([]table.ColumnConfig, len(columns))
	for i := range columns {
		align := text.AlignCenter
		switch i {
		case 0:
			align = text.AlignLeft
		case len(columns) - 1:
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: align}
	}
	t.SetColumnConfigs(configs)

	return t.Render()
}

// center pads s to width, putting the extra space of an odd gap on the right.
func center(s string, width int) string {
	gap := width - text.RuneWidthWithoutEscSequences(s)
	if gap <= 0 {
		return s
	}
	left := gap / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
}

// Print renders the table followed by a newline.
func (p *Printer) Print(columns []string, records []*types.Record) error {
	_, err := fmt.Fprintln(p.w, p.Render(columns, records))
	return err
}
