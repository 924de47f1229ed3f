package stagehand

import "context"

// Suggester proposes a commit message for a staged patch.
type Suggester interface {
	// Suggest returns a single-line commit subject for the patch text.
	Suggest(ctx context.Context, patch string) (string, error)
}
