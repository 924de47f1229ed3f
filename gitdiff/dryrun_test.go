package gitdiff_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/stagehand"
	"github.com/fwojciec/stagehand/gitdiff"
	"github.com/fwojciec/stagehand/mock"
	"github.com/fwojciec/stagehand/unidiff"
)

const dryRunPatch = `diff --git a/cmd/list.go b/cmd/list.go
index 3f9bd2b..8e0cf19 100644
--- a/cmd/list.go
+++ b/cmd/list.go
@@ -3,0 +4,1 @@
+	var n int
diff --git a/other.go b/other.go
index 1111111..2222222 100644
--- a/other.go
+++ b/other.go
@@ -1,0 +2,1 @@
+more
`

func TestDryRunRepository_ApplyPatch(t *testing.T) {
	t.Parallel()

	t.Run("prints the patch and a preview of the first file", func(t *testing.T) {
		t.Parallel()

		applied := false
		var gotPath string
		inner := &mock.Repository{
			ApplyPatchFn: func(context.Context, stagehand.Patch, stagehand.ApplyRequest) error {
				applied = true
				return nil
			},
			ContentsFn: func(_ context.Context, path string, fromHead bool) (string, error) {
				gotPath = path
				assert.False(t, fromHead, "preview reads the index copy")
				return "package main\n\nfunc list() int {\n\treturn 0\n}\n", nil
			},
		}

		var buf bytes.Buffer
		repo := gitdiff.NewDryRunRepository(inner, unidiff.NewParser(), gitdiff.NewPreviewer(), &buf)
		err := repo.ApplyPatch(context.Background(),
			stagehand.Patch{Text: dryRunPatch, ZeroContext: true},
			stagehand.ApplyRequest{Cached: true})

		require.NoError(t, err)
		assert.False(t, applied, "dry run never reaches the wrapped repository")
		assert.Equal(t, "cmd/list.go", gotPath)

		out := buf.String()
		assert.True(t, strings.HasPrefix(out, dryRunPatch), "patch text comes first, verbatim")
		assert.Contains(t, out, "=== cmd/list.go after apply ===")
		assert.Contains(t, out, "func list() int {\n\tvar n int\n\treturn 0\n}\n")
		assert.NotContains(t, out, "other.go after apply", "only the first file is previewed")
	})

	t.Run("reverse patch prints without a preview", func(t *testing.T) {
		t.Parallel()

		fetched := false
		inner := &mock.Repository{
			ApplyPatchFn: func(context.Context, stagehand.Patch, stagehand.ApplyRequest) error {
				return nil
			},
			ContentsFn: func(context.Context, string, bool) (string, error) {
				fetched = true
				return "", nil
			},
		}

		var buf bytes.Buffer
		repo := gitdiff.NewDryRunRepository(inner, unidiff.NewParser(), gitdiff.NewPreviewer(), &buf)
		err := repo.ApplyPatch(context.Background(),
			stagehand.Patch{Text: dryRunPatch},
			stagehand.ApplyRequest{Cached: true, Reverse: true})

		require.NoError(t, err)
		assert.Equal(t, dryRunPatch, buf.String())
		assert.False(t, fetched)
	})

	t.Run("new file previews against empty content", func(t *testing.T) {
		t.Parallel()

		patch := `diff --git a/fresh.txt b/fresh.txt
new file mode 100644
index 0000000..3b18e51
--- /dev/null
+++ b/fresh.txt
@@ -0,0 +1,2 @@
+hello
+world
`
		fetched := false
		inner := &mock.Repository{
			ApplyPatchFn: func(context.Context, stagehand.Patch, stagehand.ApplyRequest) error {
				return nil
			},
			ContentsFn: func(context.Context, string, bool) (string, error) {
				fetched = true
				return "", nil
			},
		}

		var buf bytes.Buffer
		repo := gitdiff.NewDryRunRepository(inner, unidiff.NewParser(), gitdiff.NewPreviewer(), &buf)
		err := repo.ApplyPatch(context.Background(), stagehand.Patch{Text: patch}, stagehand.ApplyRequest{Cached: true})

		require.NoError(t, err)
		assert.False(t, fetched, "a new file has no index copy to fetch")
		assert.Contains(t, buf.String(), "=== fresh.txt after apply ===\nhello\nworld\n")
	})

	t.Run("preview failure is informational", func(t *testing.T) {
		t.Parallel()

		inner := &mock.Repository{
			ApplyPatchFn: func(context.Context, stagehand.Patch, stagehand.ApplyRequest) error {
				return nil
			},
			ContentsFn: func(context.Context, string, bool) (string, error) {
				return "", errors.New("path not in the index")
			},
		}

		var buf bytes.Buffer
		repo := gitdiff.NewDryRunRepository(inner, unidiff.NewParser(), gitdiff.NewPreviewer(), &buf)
		err := repo.ApplyPatch(context.Background(), stagehand.Patch{Text: dryRunPatch}, stagehand.ApplyRequest{Cached: true})

		require.NoError(t, err, "a missing preview never fails the dry run")
		assert.Contains(t, buf.String(), "preview unavailable: path not in the index")
	})
}

func TestDryRunRepository_Delegates(t *testing.T) {
	t.Parallel()

	var gotReq stagehand.DiffRequest
	inner := &mock.Repository{
		ChangesFn: func(_ context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
			gotReq = req
			return stagehand.RepoSnapshot{Worktree: "wt"}, nil
		},
		ContentsFn: func(_ context.Context, path string, _ bool) (string, error) {
			return "contents of " + path, nil
		},
	}

	var buf bytes.Buffer
	repo := gitdiff.NewDryRunRepository(inner, unidiff.NewParser(), gitdiff.NewPreviewer(), &buf)

	snap, err := repo.Changes(context.Background(), stagehand.DiffRequest{Context: 3})
	require.NoError(t, err)
	assert.Equal(t, stagehand.DiffRequest{Context: 3}, gotReq)
	assert.Equal(t, "wt", snap.Worktree)

	got, err := repo.Contents(context.Background(), "notes.txt", false)
	require.NoError(t, err)
	assert.Equal(t, "contents of notes.txt", got)
	assert.Empty(t, buf.String(), "reads write nothing")
}
