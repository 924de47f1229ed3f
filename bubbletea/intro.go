package bubbletea

import (
	"github.com/charmbracelet/lipgloss"

	themes "github.com/fwojciec/stagehand/lipgloss"
)

// EmptyState returns the panel shown when the displayed side of the
// snapshot has no hunks. staged selects the wording for the index side;
// interactive adds the keys that change which diff is on screen.
// If renderer is nil, a default renderer is used.
func EmptyState(renderer *lipgloss.Renderer, theme themes.Theme, staged, interactive bool) string {
	if renderer == nil {
		renderer = lipgloss.DefaultRenderer()
	}

	title := "working tree clean"
	switch {
	case !interactive:
		title = "empty diff"
	case staged:
		title = "nothing staged"
	}

	lines := []string{renderer.NewStyle().Foreground(theme.StagedFg).Bold(true).Render(title)}
	if interactive {
		lines = append(lines, "", keyLegend(renderer, theme, staged))
	}

	return renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.GutterFg).
		Padding(1, 3).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// keyLegend lists the keys that change which diff is on screen.
func keyLegend(renderer *lipgloss.Renderer, theme themes.Theme, staged bool) string {
	other := "index"
	if staged {
		other = "worktree"
	}
	entries := [][2]string{
		{"tab", "show the " + other},
		{"w", "toggle whitespace"},
		{"+/-", "context width"},
		{"q", "quit"},
	}

	keyStyle := renderer.NewStyle().Foreground(theme.UIForeground).Bold(true).Width(5)
	descStyle := renderer.NewStyle().Foreground(theme.GutterFg)

	rows := make([]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top,
			keyStyle.Render(e[0]),
			descStyle.Render(e[1]),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
