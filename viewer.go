package stagehand

import "context"

// Viewer presents a diff for interactive review.
type Viewer interface {
	// View shows the diff and blocks until the user quits or ctx ends.
	View(ctx context.Context, diff *Diff) error
}
