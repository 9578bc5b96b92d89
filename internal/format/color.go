package format

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"
)

// Colorizer paints financial values red, green or yellow.
type Colorizer struct {
	negative lipgloss.Style
	positive lipgloss.Style
	missing  lipgloss.Style
}

// NewColorizer creates a Colorizer rendering through r. The renderer's
// color profile decides whether any escape codes are emitted.
func NewColorizer(r *lipgloss.Renderer) *Colorizer {
	return &Colorizer{
		negative: r.NewStyle().Foreground(lipgloss.Color("1")),
		positive: r.NewStyle().Foreground(lipgloss.Color("2")),
		missing:  r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

var defaultColorizer = NewColorizer(lipgloss.DefaultRenderer())

// ColorFinancialValue colors v using the default renderer.
func ColorFinancialValue(v string) string {
	return defaultColorizer.Value(v)
}

// Value colors a formatted financial figure. "N/A" and "nan" become a
// yellow "N/A". Figures with fewer than two letters are red when they are a
// negative percentage or a parenthesised amount, green when they are any
// other percentage. Everything else is returned unchanged.
func (c *Colorizer) Value(v string) string {
	if v == "N/A" || v == "nan" {
		return c.missing.Render("N/A")
	}
	if countLetters(v) >= 2 {
		return v
	}

	pct := strings.Contains(v, "%")
	switch {
	case pct && strings.Contains(v, "-"), !pct && strings.Contains(v, "("):
		return c.negative.Render(v)
	case pct:
		return c.positive.Render(v)
	}
	return v
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
