package render

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dkoosis/runlog/pkg/classify"
)

var titleCaser = cases.Title(language.English)

// Line formats one classified line for terminal output: icon, styled text,
// each physical line of a multi-line diagnostic block truncated to width.
// Width <= 0 disables truncation (non-TTY output).
func Line(theme Theme, cat classify.Category, text string, width int) string {
	icon := theme.Icon(cat)
	style := theme.Style(cat)

	parts := strings.Split(text, "\n")
	for i, p := range parts {
		prefix := "  "
		if i == 0 {
			prefix = icon + " "
		}
		parts[i] = style.Render(prefix + truncate(p, width-visualWidth(prefix)))
	}
	return strings.Join(parts, "\n")
}

// SectionLabel renders a bold, title-cased label for artifact summaries.
func SectionLabel(theme Theme, label string) string {
	return theme.Bold.Render(titleCaser.String(label))
}

// truncate clips s to the given display width, accounting for East Asian
// wide characters. Width <= 0 means no limit.
func truncate(s string, width int) string {
	if width <= 0 || visualWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width-1, "…")
}

func visualWidth(s string) int {
	return runewidth.StringWidth(s)
}
