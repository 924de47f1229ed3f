// Package worddiff computes intraline change segments for paired lines.
package worddiff

import (
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/fwojciec/stagehand"
)

// Compile-time interface verification.
var _ stagehand.WordDiffer = (*Differ)(nil)

// Differ splits an old/new line pair into changed and unchanged segments
// using the diff-match-patch character diff with semantic cleanup, so the
// boundaries fall on word-ish edges rather than minimal-edit ones.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Diff returns the segments of old and new in order. Concatenating the
// texts of either side reproduces that side's input.
func (d *Differ) Diff(old, new string) ([]stagehand.Segment, []stagehand.Segment) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(old, new, false))

	var oldSegs, newSegs []stagehand.Segment
	for _, df := range diffs {
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			oldSegs = appendSegment(oldSegs, df.Text, false)
			newSegs = appendSegment(newSegs, df.Text, false)
		case diffmatchpatch.DiffDelete:
			oldSegs = appendSegment(oldSegs, df.Text, true)
		case diffmatchpatch.DiffInsert:
			newSegs = appendSegment(newSegs, df.Text, true)
		}
	}
	return oldSegs, newSegs
}

func appendSegment(segs []stagehand.Segment, text string, changed bool) []stagehand.Segment {
	if text == "" {
		return segs
	}
	if n := len(segs); n > 0 && segs[n-1].Changed == changed {
		segs[n-1].Text += text
		return segs
	}
	return append(segs, stagehand.Segment{Text: text, Changed: changed})
}
