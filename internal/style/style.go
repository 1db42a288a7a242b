// Package style centralizes the lipgloss styles cmd/outline renders with,
// grounded on the teacher's internal/ui/table.go and internal/ui/search.go
// (same palette-as-vars, style-per-concern shape).
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	ColorAccent = lipgloss.Color("39")
	ColorWarn   = lipgloss.Color("214")
	ColorPass   = lipgloss.Color("78")
	ColorMuted  = lipgloss.Color("243")
)

var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	HintStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)

	SnippetMarkStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

// NewTable returns a rounded-border table using the package's muted border
// color, matching ui.NewSearchTable's defaults.
func NewTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted))
}
