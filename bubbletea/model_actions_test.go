package bubbletea_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/stagehand"
	"github.com/fwojciec/stagehand/bubbletea"
	themes "github.com/fwojciec/stagehand/lipgloss"
	"github.com/fwojciec/stagehand/mock"
)

const worktreeDiff = `diff --git a/notes.txt b/notes.txt
index 83db48f..bf269f4 100644
--- a/notes.txt
+++ b/notes.txt
@@ -1,3 +1,3 @@
 alpha
-beta
+bravo
 gamma
`

// run executes the command returned by an action and feeds its message
// back into the model, the way the program runtime would.
func run(t *testing.T, m bubbletea.Model, cmd tea.Cmd) bubbletea.Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(bubbletea.Model)
}

func TestModel_StageLine(t *testing.T) {
	t.Parallel()

	var gotPatch stagehand.Patch
	var gotApply stagehand.ApplyRequest
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, p stagehand.Patch, req stagehand.ApplyRequest) error {
			gotPatch, gotApply = p, req
			return nil
		},
		ChangesFn: func(_ context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))

	// Cursor onto the deleted line, then stage it.
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("s"))
	m = run(t, m, cmd)

	assert.True(t, gotApply.Cached)
	assert.False(t, gotApply.Reverse)
	assert.True(t, gotPatch.ZeroContext)
	assert.Contains(t, gotPatch.Text, "-beta")
	assert.NotContains(t, gotPatch.Text, "+bravo")
	assert.Contains(t, m.View(), "staged 1 line")
}

func TestModel_StageMarkedLines(t *testing.T) {
	t.Parallel()

	var gotPatch stagehand.Patch
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, p stagehand.Patch, _ stagehand.ApplyRequest) error {
			gotPatch = p
			return nil
		},
		ChangesFn: func(_ context.Context, _ stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))

	// Mark the deletion and the addition, then stage both.
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), space, runes("j"), space, runes("s"))
	m = run(t, m, cmd)

	assert.Contains(t, gotPatch.Text, "-beta")
	assert.Contains(t, gotPatch.Text, "+bravo")
	assert.Contains(t, m.View(), "staged 2 lines")
}

func TestModel_StageWholeHunk(t *testing.T) {
	t.Parallel()

	var gotPatch stagehand.Patch
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, p stagehand.Patch, _ stagehand.ApplyRequest) error {
			gotPatch = p
			return nil
		},
		ChangesFn: func(_ context.Context, _ stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))

	// Cursor on the hunk header selects the whole hunk.
	m, cmd := press(m, runes("n"), runes("s"))
	m = run(t, m, cmd)

	assert.Contains(t, gotPatch.Text, "@@")
	assert.Contains(t, gotPatch.Text, "-beta")
	assert.Contains(t, gotPatch.Text, "+bravo")
	assert.Contains(t, gotPatch.Text, " alpha")
	assert.Contains(t, m.View(), "staged 2 lines")
}

func TestModel_StageContextLineFlashes(t *testing.T) {
	t.Parallel()

	called := false
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, _ stagehand.Patch, _ stagehand.ApplyRequest) error {
			called = true
			return nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))

	// Cursor on " alpha": a context line selects nothing stageable.
	m, cmd := press(m, runes("j"), runes("j"), runes("s"))

	assert.Nil(t, cmd)
	assert.False(t, called)
	assert.Contains(t, m.View(), "nothing to stage")
}

func TestModel_StageWithoutRepositoryFlashes(t *testing.T) {
	t.Parallel()

	m := sizedModel(t, worktreeDiff)
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("s"))

	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "read-only view")
}

func TestModel_StageInIndexViewFlashes(t *testing.T) {
	t.Parallel()

	repo := &mock.Repository{}
	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo), bubbletea.WithIndexView())
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("s"))

	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "already staged; u unstages")
}

func TestModel_UnstageLine(t *testing.T) {
	t.Parallel()

	var gotApply stagehand.ApplyRequest
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, _ stagehand.Patch, req stagehand.ApplyRequest) error {
			gotApply = req
			return nil
		},
		ChangesFn: func(_ context.Context, _ stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{Index: worktreeDiff}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo), bubbletea.WithIndexView())
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("u"))
	m = run(t, m, cmd)

	assert.True(t, gotApply.Cached)
	assert.True(t, gotApply.Reverse)
	assert.Contains(t, m.View(), "unstaged 1 line")
}

func TestModel_UnstageInWorktreeViewFlashes(t *testing.T) {
	t.Parallel()

	repo := &mock.Repository{}
	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("u"))

	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "nothing staged here; tab shows the index")
}

func TestModel_DiscardConfirms(t *testing.T) {
	t.Parallel()

	var gotApply stagehand.ApplyRequest
	applied := false
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, _ stagehand.Patch, req stagehand.ApplyRequest) error {
			applied = true
			gotApply = req
			return nil
		},
		ChangesFn: func(_ context.Context, _ stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))

	// x arms the confirmation; nothing is applied yet.
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("x"))
	assert.Nil(t, cmd)
	assert.False(t, applied)
	assert.Contains(t, m.View(), "discard 1 line? y/N")

	// y applies in reverse against the worktree.
	m, cmd = press(m, runes("y"))
	m = run(t, m, cmd)

	assert.True(t, applied)
	assert.True(t, gotApply.Reverse)
	assert.False(t, gotApply.Cached)
	assert.Contains(t, m.View(), "discarded 1 line")
}

func TestModel_DiscardDeclined(t *testing.T) {
	t.Parallel()

	applied := false
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, _ stagehand.Patch, _ stagehand.ApplyRequest) error {
			applied = true
			return nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("x"), runes("n"))

	assert.Nil(t, cmd)
	assert.False(t, applied)
	assert.Contains(t, m.View(), "cancelled")
}

func TestModel_DiscardInIndexViewFlashes(t *testing.T) {
	t.Parallel()

	repo := &mock.Repository{}
	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo), bubbletea.WithIndexView())
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("x"))

	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "discard from the worktree view")
}

func TestModel_SwitchSideRefetches(t *testing.T) {
	t.Parallel()

	indexDiff := `diff --git a/staged.txt b/staged.txt
--- a/staged.txt
+++ b/staged.txt
@@ -1,1 +1,2 @@
 kept
+queued
`
	repo := &mock.Repository{
		ChangesFn: func(_ context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{Worktree: worktreeDiff, Index: indexDiff}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = run(t, m, cmd)

	view := m.View()
	assert.Contains(t, view, "index")
	assert.Contains(t, view, "staged.txt")
	assert.Contains(t, view, "queued")
}

func TestModel_ZoomRequestsWiderContext(t *testing.T) {
	t.Parallel()

	var gotReq stagehand.DiffRequest
	repo := &mock.Repository{
		ChangesFn: func(_ context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			gotReq = req
			return stagehand.RepoSnapshot{Worktree: worktreeDiff}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))
	m, cmd := press(m, runes("+"))
	m = run(t, m, cmd)

	assert.Equal(t, 5, gotReq.Context)
	view := m.View()
	assert.Contains(t, view, "ctx 5")
	assert.Contains(t, view, "context 5")
}

func TestModel_ZoomOutNarrowsContext(t *testing.T) {
	t.Parallel()

	var gotReq stagehand.DiffRequest
	repo := &mock.Repository{
		ChangesFn: func(_ context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			gotReq = req
			return stagehand.RepoSnapshot{Worktree: worktreeDiff}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))
	m, cmd := press(m, runes("-"))
	m = run(t, m, cmd)

	assert.Equal(t, 1, gotReq.Context)
	assert.Contains(t, m.View(), "ctx 1")
}

func TestModel_WhitespaceToggleRefetches(t *testing.T) {
	t.Parallel()

	var gotReq stagehand.DiffRequest
	repo := &mock.Repository{
		ChangesFn: func(_ context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			gotReq = req
			return stagehand.RepoSnapshot{Worktree: worktreeDiff}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))
	m, cmd := press(m, runes("w"))
	m = run(t, m, cmd)

	assert.True(t, gotReq.IgnoreWhitespace)
	view := m.View()
	assert.Contains(t, view, "-w")
	assert.Contains(t, view, "ignoring whitespace")
}

func TestModel_JumpEmitsFilePosition(t *testing.T) {
	t.Parallel()

	var got stagehand.JumpTarget
	m := sizedModel(t, worktreeDiff, bubbletea.WithJumpHandler(func(target stagehand.JumpTarget) {
		got = target
	}))

	// Cursor on "+bravo", which is line 2 of the b-side file.
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("j"), runes("o"))

	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.Equal(t, stagehand.JumpTarget{Path: "notes.txt", Line: 2, Col: 1}, got)
}

func TestModel_JumpWithoutPositionFlashes(t *testing.T) {
	t.Parallel()

	// Cursor on the file header row has no file position.
	m := sizedModel(t, worktreeDiff, bubbletea.WithJumpHandler(func(stagehand.JumpTarget) {}))
	m, cmd := press(m, runes("o"))

	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "no file position here")
}

func TestModel_SuggestUsesSelectionPatch(t *testing.T) {
	t.Parallel()

	var gotPatch string
	suggester := &mock.Suggester{
		SuggestFn: func(_ context.Context, patch string) (string, error) {
			gotPatch = patch
			return "Rename beta to bravo", nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithSuggester(suggester))
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("m"))

	assert.Contains(t, m.View(), "suggesting…")
	m = run(t, m, cmd)

	assert.Contains(t, gotPatch, "-beta")
	assert.Contains(t, m.View(), `msg: "Rename beta to bravo"`)
}

func TestModel_SuggestWithoutSuggesterFlashes(t *testing.T) {
	t.Parallel()

	m := sizedModel(t, worktreeDiff)
	m, cmd := press(m, runes("m"))

	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "no suggester configured")
}

func TestModel_SuggestErrorFlashes(t *testing.T) {
	t.Parallel()

	suggester := &mock.Suggester{
		SuggestFn: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("quota exhausted")
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithSuggester(suggester))
	m, cmd := press(m, runes("n"), runes("m"))
	m = run(t, m, cmd)

	assert.Contains(t, m.View(), "suggest: quota exhausted")
}

func TestModel_ApplyFailureFlashes(t *testing.T) {
	t.Parallel()

	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, _ stagehand.Patch, _ stagehand.ApplyRequest) error {
			return errors.New("patch does not apply")
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))
	m, cmd := press(m, runes("j"), runes("j"), runes("j"), runes("s"))
	m = run(t, m, cmd)

	assert.Contains(t, m.View(), "patch does not apply")
}

func TestModel_RangeSelection(t *testing.T) {
	t.Parallel()

	var gotPatch stagehand.Patch
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, p stagehand.Patch, _ stagehand.ApplyRequest) error {
			gotPatch = p
			return nil
		},
		ChangesFn: func(_ context.Context, _ stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))

	// v starts a range on the deleted line; moving and pressing v again
	// marks everything in between.
	m, _ = press(m, runes("j"), runes("j"), runes("j"), runes("v"))
	assert.Contains(t, m.View(), "select: move, then v to mark")

	m, cmd := press(m, runes("j"), runes("v"), runes("s"))
	m = run(t, m, cmd)

	assert.Contains(t, gotPatch.Text, "-beta")
	assert.Contains(t, gotPatch.Text, "+bravo")
	assert.Contains(t, m.View(), "staged 2 lines")
}

func TestModel_EscClearsMarksThenFlash(t *testing.T) {
	t.Parallel()

	applied := false
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, _ stagehand.Patch, _ stagehand.ApplyRequest) error {
			applied = true
			return nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))

	// Mark a line, clear it with esc; staging then falls back to the cursor
	// row, which is a context line.
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	m, _ = press(m, runes("j"), runes("j"), runes("j"), space)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	m, cmd := press(m, runes("k"), runes("s"))

	assert.Nil(t, cmd)
	assert.False(t, applied)
	assert.Contains(t, m.View(), "nothing to stage")
}

func TestModel_CursorCarriedAcrossRefresh(t *testing.T) {
	t.Parallel()

	before := `diff --git a/notes.txt b/notes.txt
index 1111111..2222222 100644
--- a/notes.txt
+++ b/notes.txt
@@ -1,2 +1,2 @@
 alpha
-beta
+bravo
@@ -10,2 +10,2 @@
 delta
-epsilon
+zeta
`
	after := `diff --git a/notes.txt b/notes.txt
index 1111111..3333333 100644
--- a/notes.txt
+++ b/notes.txt
@@ -10,2 +10,2 @@
 delta
-epsilon
+zeta
`
	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, _ stagehand.Patch, _ stagehand.ApplyRequest) error {
			return nil
		},
		ChangesFn: func(_ context.Context, _ stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{Worktree: after}, nil
		},
	}

	m := sizedModel(t, before,
		bubbletea.WithRepository(repo),
		bubbletea.WithTheme(themes.TestTheme()),
		bubbletea.WithRenderer(trueColorRenderer()),
	)

	// Mark the first hunk from its header row, park the cursor on
	// "-epsilon", then stage. The refresh drops the first hunk; the cursor
	// should still sit on the epsilon line.
	space := tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	m, _ = press(m, runes("n"), space)
	m, cmd := press(m, runes("G"), runes("k"), runes("s"))
	m = run(t, m, cmd)

	var cursorLine string
	for _, line := range strings.Split(m.View(), "\n") {
		if strings.Contains(line, "48;2;85;85;85") {
			cursorLine = line
			break
		}
	}
	require.NotEmpty(t, cursorLine, "no cursor row in view")
	assert.Contains(t, cursorLine, "epsilon")
	assert.Contains(t, m.View(), "staged 2 lines")
}

func TestModel_StagingEverythingShowsCleanPanel(t *testing.T) {
	t.Parallel()

	repo := &mock.Repository{
		ApplyPatchFn: func(_ context.Context, _ stagehand.Patch, _ stagehand.ApplyRequest) error {
			return nil
		},
		ChangesFn: func(_ context.Context, _ stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			return stagehand.RepoSnapshot{Worktree: ""}, nil
		},
	}

	m := sizedModel(t, worktreeDiff, bubbletea.WithRepository(repo))
	m, cmd := press(m, runes("n"), runes("s"))
	m = run(t, m, cmd)

	assert.Contains(t, m.View(), "working tree clean")
}

func TestModel_HelpTogglesFullView(t *testing.T) {
	t.Parallel()

	m := sizedModel(t, worktreeDiff)

	// The full help lists bindings the short view has no room for.
	assert.NotContains(t, m.View(), "half page")
	m, _ = press(m, runes("?"))
	assert.Contains(t, m.View(), "half page")
}
