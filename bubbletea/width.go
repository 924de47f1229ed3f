package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// tabWidth is the standard terminal tab stop interval.
const tabWidth = 8

// DisplayWidth returns the terminal cell width of s, expanding tabs to the
// next 8-column boundary. lipgloss.Width alone reports 0 for tabs, which
// breaks gutter alignment for indented code.
func DisplayWidth(s string) int {
	_, col := expandFrom(s, 0)
	return col
}

// ExpandTabs replaces tabs with the spaces needed to reach the next tab
// stop. Styled spans render unreliably around raw tabs, so every line is
// expanded before styling.
func ExpandTabs(s string) string {
	out, _ := expandFrom(s, 0)
	return out
}

// expandFrom expands tabs in s starting at column col and returns the
// expanded text with the final column. Expansion depends on the starting
// column, so segments of one line must be expanded left to right.
func expandFrom(s string, col int) (string, int) {
	if !strings.ContainsRune(s, '\t') {
		return s, col + lipgloss.Width(s)
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\t' {
			next := ((col / tabWidth) + 1) * tabWidth
			b.WriteString(strings.Repeat(" ", next-col))
			col = next
			continue
		}
		b.WriteRune(r)
		col += lipgloss.Width(string(r))
	}
	return b.String(), col
}
