package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table represents a simple table for displaying tabular data
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{
		writer:  w,
		headers: headers,
		noColor: noColor,
	}
}

// AddRow adds a row to the table. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Render renders the table to the writer
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if t.noColor {
		bold.DisableColor()
		gray.DisableColor()
	}

	separators := make([]string, len(widths))
	for i, width := range widths {
		separators[i] = strings.Repeat("─", width)
	}

	t.renderLine(bold, t.headers, widths)
	t.renderLine(gray, separators, widths)
	for _, row := range t.rows {
		t.renderLine(nil, row, widths)
	}
}

func (t *Table) renderLine(c *color.Color, cells []string, widths []int) {
	padded := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = padRight(cell, widths[i])
	}

	line := strings.TrimRight(strings.Join(padded, "  "), " ")
	if c != nil {
		c.Fprintln(t.writer, line)
		return
	}
	fmt.Fprintln(t.writer, line)
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// KeyValues renders aligned "key: value" lines
func KeyValues(w io.Writer, noColor bool, pairs ...[2]string) {
	keyWidth := 0
	for _, pair := range pairs {
		if len(pair[0]) > keyWidth {
			keyWidth = len(pair[0])
		}
	}

	cyan := color.New(color.FgCyan)
	if noColor {
		cyan.DisableColor()
	}
	for _, pair := range pairs {
		cyan.Fprint(w, padRight(pair[0]+":", keyWidth+1))
		fmt.Fprintf(w, " %s\n", pair[1])
	}
}
