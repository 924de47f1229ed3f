package bubbletea_test

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/fwojciec/stagehand"
	"github.com/fwojciec/stagehand/bubbletea"
	"github.com/fwojciec/stagehand/unidiff"
)

// trueColorRenderer creates a lipgloss renderer that outputs true colors.
// This is useful for testing color output without affecting global state.
func trueColorRenderer() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)
	return r
}

// parseDiff builds the model input the same way the program does.
func parseDiff(text string) *stagehand.Diff {
	return unidiff.NewParser().ParseString(text)
}

// sizedModel creates a model and delivers the initial window size, the way
// the program runtime does before the first render.
func sizedModel(t *testing.T, text string, opts ...bubbletea.Option) bubbletea.Model {
	t.Helper()
	m := bubbletea.NewModel(parseDiff(text), opts...)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(bubbletea.Model)
}

// press feeds key messages to the model in order and returns the final
// model along with the last non-nil command.
func press(m bubbletea.Model, msgs ...tea.Msg) (bubbletea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		next, c := m.Update(msg)
		m = next.(bubbletea.Model)
		if c != nil {
			cmd = c
		}
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
