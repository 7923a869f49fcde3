package views

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
)

// Common styles used across all views
type ViewStyles struct {
	Selected   lipgloss.Style
	Active     lipgloss.Style
	Normal     lipgloss.Style
	Label      lipgloss.Style
	Container  lipgloss.Style
	Playback   lipgloss.Style
	Unplayable lipgloss.Style
	Ruler      lipgloss.Style
	Hover      lipgloss.Style
}

// getCommonStyles returns the standard style definitions used across views
func getCommonStyles() *ViewStyles {
	return &ViewStyles{
		Selected:   lipgloss.NewStyle().Background(lipgloss.Color("7")).Foreground(lipgloss.Color("0")),
		Active:     lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Normal:     lipgloss.NewStyle().Foreground(lipgloss.Color("15")),
		Label:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Container:  lipgloss.NewStyle().Padding(0, 0),
		Playback:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Unplayable: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Ruler:      lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Hover:      lipgloss.NewStyle().Background(lipgloss.Color("3")).Foreground(lipgloss.Color("0")),
	}
}

var colorProfile = termenv.ColorProfile()

// amplitudeColor maps a normalized peak to a green->red ramp, degraded to a
// flat color on terminals without 256-color support.
func amplitudeColor(peak float64) lipgloss.Color {
	if colorProfile == termenv.Ascii {
		return lipgloss.Color("7")
	}
	if peak < 0 {
		peak = 0
	}
	if peak > 1 {
		peak = 1
	}
	// hue 140 (green) down to 10 (red)
	c := colorful.Hsv(140-130*peak, 0.75, 0.9)
	return lipgloss.Color(c.Hex())
}
