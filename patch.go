package stagehand

import "errors"

// Patch is a synthesized unified diff plus the metadata its application
// requires.
type Patch struct {
	Text        string
	ZeroContext bool // apply with --unidiff-zero
}

// ErrNothingSelected reports that a selection resolved to no changed
// lines. It is an informational outcome rather than a failure: callers
// surface it as a status message.
var ErrNothingSelected = errors.New("not within a hunk")

// ErrCombinedHunk reports a line-level operation on a combined (merge)
// hunk. Combined headers parse, but patch synthesis and line numbering
// only support the two-sided form.
var ErrCombinedHunk = errors.New("combined hunks are not supported")

// JumpTarget locates a diff-view cursor position in the work-tree file.
type JumpTarget struct {
	Path string
	Line int // 1-based
	Col  int // 1-based
}
