package cli

import (
	"encoding/json"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// isTerminal reports whether w is an interactive terminal. Styling is
// only applied when it is, so piped output stays plain.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func styled(cmd *cobra.Command, style lipgloss.Style, text string) string {
	if !isTerminal(cmd.OutOrStdout()) {
		return text
	}
	return style.Render(text)
}

func heading(cmd *cobra.Command, text string) string {
	return styled(cmd, headingStyle, text)
}

func muted(cmd *cobra.Command, text string) string {
	return styled(cmd, mutedStyle, text)
}

func failure(cmd *cobra.Command, text string) string {
	return styled(cmd, errorStyle, text)
}

// renderTable draws rows under headers with a rounded border.
func renderTable(cmd *cobra.Command, headers []string, rows [][]string) string {
	plain := !isTerminal(cmd.OutOrStdout())

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow && !plain {
				return headerStyle
			}
			return cellStyle
		})
	if plain {
		t = t.Border(lipgloss.HiddenBorder())
	}
	return t.String()
}

// writeJSON prints v as indented JSON.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
