// Package render styles classified log lines for terminal display via
// lipgloss. Rendering rules are data: a theme maps categories to styles and
// icons, nothing here knows about any build tool.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dkoosis/runlog/pkg/classify"
)

// Theme defines colors and icons for terminal rendering.
type Theme struct {
	Name    string
	Info    lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Result  lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Icons   ThemeIcons
}

// ThemeIcons defines the icon set for a theme.
type ThemeIcons struct {
	Info    string
	Warning string
	Error   string
	Result  string
}

// DefaultTheme returns a vibrant color theme.
func DefaultTheme() Theme {
	return Theme{
		Name:    "default",
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("242")), // gray
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")), // orange
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")), // red
		Result:  lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true), // blue
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Info:    "·",
			Warning: "⚠",
			Error:   "✗",
			Result:  "▸",
		},
	}
}

// MonoTheme returns a monochrome theme (no colors).
func MonoTheme() Theme {
	return Theme{
		Name:    "mono",
		Info:    lipgloss.NewStyle(),
		Warning: lipgloss.NewStyle(),
		Error:   lipgloss.NewStyle(),
		Result:  lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle(),
		Bold:    lipgloss.NewStyle().Bold(true),
		Icons: ThemeIcons{
			Info:    "-",
			Warning: "!",
			Error:   "x",
			Result:  ">",
		},
	}
}

// ThemeByName returns a theme by name, defaulting to DefaultTheme.
func ThemeByName(name string) Theme {
	switch name {
	case "mono":
		return MonoTheme()
	default:
		return DefaultTheme()
	}
}

// Style returns the style for a category.
func (t Theme) Style(cat classify.Category) lipgloss.Style {
	switch cat {
	case classify.Warning:
		return t.Warning
	case classify.Error:
		return t.Error
	case classify.Result:
		return t.Result
	default:
		return t.Info
	}
}

// Icon returns the icon for a category.
func (t Theme) Icon(cat classify.Category) string {
	switch cat {
	case classify.Warning:
		return t.Icons.Warning
	case classify.Error:
		return t.Icons.Error
	case classify.Result:
		return t.Icons.Result
	default:
		return t.Icons.Info
	}
}
