package format

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Align selects how Justify pads a cell.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Width is the printable width of s; ANSI escape sequences count as zero.
func Width(s string) int {
	return ansi.StringWidth(s)
}

// Justify pads every cell to width printable columns. Cells already at
// least width wide are returned as-is.
func Justify(cells []string, width int, mode Align) []string {
	out := make([]string, len(cells))
	for i, s := range cells {
		pad := width - Width(s)
		if pad <= 0 {
			out[i] = s
			continue
		}
		switch mode {
		case AlignLeft:
			out[i] = s + strings.Repeat(" ", pad)
		case AlignCenter:
			left := pad / 2
			out[i] = strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
		default:
			out[i] = strings.Repeat(" ", pad) + s
		}
	}
	return out
}

// Adjoin lays columns side by side, left-justified, with space blank
// columns after every column but the last. Shorter columns are padded with
// blank cells.
func Adjoin(space int, cols ...[]string) string {
	if len(cols) == 0 {
		return ""
	}

	rows := 0
	for _, col := range cols {
		rows = max(rows, len(col))
	}

	padded := make([][]string, len(cols))
	for i, col := range cols {
		width := 0
		for _, s := range col {
			width = max(width, Width(s))
		}
		if i < len(cols)-1 {
			width += space
		}
		c := Justify(col, width, AlignLeft)
		for len(c) < rows {
			c = append(c, strings.Repeat(" ", width))
		}
		padded[i] = c
	}

	lines := make([]string, rows)
	var b strings.Builder
	for r := 0; r < rows; r++ {
		b.Reset()
		for _, c := range padded {
			b.WriteString(c[r])
		}
		lines[r] = b.String()
	}
	return strings.Join(lines, "\n")
}
