package stagehand

import (
	"context"
	"io"
)

// Runner executes an external command and returns its stdout. A non-zero
// exit is an error carrying the command's stderr.
type Runner interface {
	Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)
}
