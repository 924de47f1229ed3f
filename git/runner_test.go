package git_test

import (
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fwojciec/stagehand/git"
)

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("tests shell out to sh")
	}

	t.Run("returns stdout", func(t *testing.T) {
		t.Parallel()

		runner := git.NewRunner()
		out, err := runner.Run(context.Background(), nil, "sh", "-c", "printf hello")

		require.NoError(t, err)
		assert.Equal(t, "hello", string(out))
	})

	t.Run("feeds stdin to the command", func(t *testing.T) {
		t.Parallel()

		runner := git.NewRunner()
		out, err := runner.Run(context.Background(), strings.NewReader("patch body\n"), "sh", "-c", "cat")

		require.NoError(t, err)
		assert.Equal(t, "patch body\n", string(out))
	})

	t.Run("non-zero exit carries stderr", func(t *testing.T) {
		t.Parallel()

		runner := git.NewRunner()
		_, err := runner.Run(context.Background(), nil, "sh", "-c", "echo corrupt patch >&2; exit 3")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "corrupt patch")
	})

	t.Run("missing executable", func(t *testing.T) {
		t.Parallel()

		runner := git.NewRunner()
		_, err := runner.Run(context.Background(), nil, "definitely-not-a-command-xyz")

		assert.Error(t, err)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		runner := git.NewRunner()
		_, err := runner.Run(ctx, nil, "sh", "-c", "sleep 10")

		assert.Error(t, err)
	})
}
