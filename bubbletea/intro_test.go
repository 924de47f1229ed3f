package bubbletea_test

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/fwojciec/stagehand/bubbletea"
	themes "github.com/fwojciec/stagehand/lipgloss"
)

func TestEmptyState_WorktreeClean(t *testing.T) {
	t.Parallel()

	renderer := lipgloss.NewRenderer(nil, termenv.WithProfile(termenv.Ascii))
	panel := bubbletea.EmptyState(renderer, themes.DefaultTheme(), false, true)

	assert.Contains(t, panel, "working tree clean")
	assert.Contains(t, panel, "show the index")
	assert.Contains(t, panel, "toggle whitespace")
	assert.Contains(t, panel, "context width")
	assert.Contains(t, panel, "quit")
}

func TestEmptyState_NothingStaged(t *testing.T) {
	t.Parallel()

	renderer := lipgloss.NewRenderer(nil, termenv.WithProfile(termenv.Ascii))
	panel := bubbletea.EmptyState(renderer, themes.DefaultTheme(), true, true)

	assert.Contains(t, panel, "nothing staged")
	assert.Contains(t, panel, "show the worktree")
	assert.NotContains(t, panel, "working tree clean")
}

func TestEmptyState_ReadOnly(t *testing.T) {
	t.Parallel()

	// Without a repository there is nothing to switch to, so no key legend.
	renderer := lipgloss.NewRenderer(nil, termenv.WithProfile(termenv.Ascii))
	panel := bubbletea.EmptyState(renderer, themes.DefaultTheme(), false, false)

	assert.Contains(t, panel, "empty diff")
	assert.NotContains(t, panel, "show the index")
	assert.NotContains(t, panel, "quit")
}

func TestEmptyState_Border(t *testing.T) {
	t.Parallel()

	renderer := lipgloss.NewRenderer(nil, termenv.WithProfile(termenv.Ascii))
	panel := bubbletea.EmptyState(renderer, themes.DefaultTheme(), false, true)

	assert.Contains(t, panel, "╭")
	assert.Contains(t, panel, "╰")
	assert.Contains(t, panel, "│")
}

func TestEmptyState_NilRenderer(t *testing.T) {
	t.Parallel()

	panel := bubbletea.EmptyState(nil, themes.DefaultTheme(), false, false)

	assert.Contains(t, panel, "empty diff")
}
