package ui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Colors used for terminal output.
var (
	ColorRed    = lipgloss.Color("#FF5F5F")
	ColorGreen  = lipgloss.Color("#5FD75F")
	ColorYellow = lipgloss.Color("#FFD75F")
	ColorCyan   = lipgloss.Color("#00D7D7")
	ColorGray   = lipgloss.Color("#808080")
	ColorWhite  = lipgloss.Color("#FFFFFF")
)

// Styles are bound to a renderer so colour support follows the destination writer.
type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Dim     lipgloss.Style
	Box     lipgloss.Style
}

func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(ColorCyan),

		Label: r.NewStyle().
			Bold(true).
			Foreground(ColorWhite),

		Success: r.NewStyle().
			Foreground(ColorGreen),

		Warning: r.NewStyle().
			Foreground(ColorYellow),

		Error: r.NewStyle().
			Foreground(ColorRed).
			Bold(true),

		Dim: r.NewStyle().
			Foreground(ColorGray),

		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorCyan).
			Padding(0, 1),
	}
}
