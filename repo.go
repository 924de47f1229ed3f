package stagehand

import "context"

// DiffRequest selects what a repository diff reports. Both sides of a
// Snapshot are always produced, so there is no worktree/index switch here;
// callers pick the side they display.
type DiffRequest struct {
	Context          int      // context lines per hunk; 0 keeps the backend default
	IgnoreWhitespace bool     // drop whitespace-only changes
	Paths            []string // limit the diff to the given pathspecs
}

// DefaultContext is the context width used when nothing else is configured.
const DefaultContext = 3

const (
	minContext  = 1
	minZoomStep = 5
)

// ZoomContext returns the context width one ladder step away from current.
// The ladder runs {1, 3, step, 2*step, ...} with step = max(|amount|, 5);
// positive amounts widen, negative amounts narrow, and the width never
// drops below 1.
func ZoomContext(current, amount int) int {
	if amount == 0 {
		return current
	}
	step := amount
	if step < 0 {
		step = -step
	}
	if step < minZoomStep {
		step = minZoomStep
	}
	ladder := func(i int) int {
		switch i {
		case 0:
			return minContext
		case 1:
			return DefaultContext
		default:
			return (i - 1) * step
		}
	}
	if amount > 0 {
		for i := 0; ; i++ {
			if v := ladder(i); v > current {
				return v
			}
		}
	}
	prev := minContext
	for i := 0; ; i++ {
		v := ladder(i)
		if v >= current {
			return prev
		}
		prev = v
	}
}

// RepoSnapshot carries both diffs describing a repository at one moment:
// the worktree against the index and the index against HEAD.
type RepoSnapshot struct {
	Worktree string
	Index    string
}

// ApplyRequest says where a patch lands. The patch itself carries the
// zero-context flag (Patch.ZeroContext).
type ApplyRequest struct {
	Cached  bool // apply to the index instead of the worktree
	Reverse bool // apply in reverse (unstage, discard)
}

// Repository is the staging backend: it produces diff snapshots, applies
// synthesized patches and serves file contents for previews.
type Repository interface {
	// Changes returns a fresh snapshot of both diff sides.
	Changes(ctx context.Context, req DiffRequest) (RepoSnapshot, error)
	// ApplyPatch applies a synthesized patch.
	ApplyPatch(ctx context.Context, p Patch, req ApplyRequest) error
	// Contents returns a file's content from the index, or from HEAD when
	// fromHead is set.
	Contents(ctx context.Context, path string, fromHead bool) (string, error)
}
