package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/conneroisu/wikicore/internal/errors"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bd93f9"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffb86c"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#50fa7b"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272a4"))
)

// printDiagnostics writes the recovered failures of a run, one per line.
func printDiagnostics(w io.Writer, diagnostics *errors.Collector) {
	for _, d := range diagnostics.Diagnostics() {
		style := warningStyle
		if d.Severity >= errors.SeverityError {
			style = errorStyle
		}
		location := d.Source
		if d.Line > 0 {
			location = fmt.Sprintf("%s:%d:%d", d.Source, d.Line, d.Column)
		}
		fmt.Fprintf(w, "%s %s %s\n", style.Render(d.Severity.String()), dimStyle.Render(location), d.Message)
	}
}
