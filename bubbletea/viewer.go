package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fwojciec/stagehand"
)

// Compile-time interface verification.
var _ stagehand.Viewer = (*Stager)(nil)

// Stager runs the staging view as a full-screen terminal program.
type Stager struct {
	opts []Option
}

// NewStager creates a Stager. The options are applied to every model it
// runs, after the view context.
func NewStager(opts ...Option) *Stager {
	return &Stager{opts: opts}
}

// View implements stagehand.Viewer. It blocks until the user quits or the
// context is cancelled.
func (s *Stager) View(ctx context.Context, diff *stagehand.Diff) error {
	opts := append([]Option{WithContext(ctx)}, s.opts...)
	p := tea.NewProgram(NewModel(diff, opts...), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
