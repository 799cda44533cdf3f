// Package tabular renders spreadsheet rows as plain-text tables.
package tabular

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Sheet is one named grid of cells. The first row is the header.
type Sheet struct {
	Name string
	Rows [][]string
}

// Render draws each sheet as a bordered table preceded by a
// "Sheet: <name>" line. A sheet without data renders the header line only.
// Sheets are separated by a blank line.
func Render(sheets ...Sheet) string {
	parts := make([]string, 0, len(sheets))
	for _, sheet := range sheets {
		parts = append(parts, renderSheet(sheet))
	}
	return strings.Join(parts, "\n\n")
}

func renderSheet(sheet Sheet) string {
	header := "Sheet: " + sheet.Name

	rows := trimEmpty(sheet.Rows)
	if len(rows) == 0 {
		return header
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(pad(rows[0], width)...)
	for _, row := range rows[1:] {
		t.Row(pad(row, width)...)
	}

	return header + "\n" + t.String()
}

// pad extends a ragged row to width with empty cells and flattens newlines.
func pad(row []string, width int) []string {
	out := make([]string, width)
	for i := range out {
		if i < len(row) {
			out[i] = strings.Join(strings.Fields(row[i]), " ")
		}
	}
	return out
}

// trimEmpty drops rows whose cells are all blank.
func trimEmpty(rows [][]string) [][]string {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
