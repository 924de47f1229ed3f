package linediff

import (
	"fmt"

	"github.com/fwojciec/stagehand"
)

// Apply runs an edit script over a line sequence and returns the result.
// Ops splice the progressively patched sequence front to back, so a script
// produced by Diff, simplified or normalized, rebuilds the target exactly.
// An out-of-range position is an error, not a panic.
func Apply(seq []string, edits []stagehand.Edit) ([]string, error) {
	out := append(make([]string, 0, len(seq)), seq...)
	for _, e := range edits {
		var err error
		switch e := e.(type) {
		case stagehand.Flush:
		case stagehand.Ins:
			out, err = splice(out, e.Pos, e.Pos, e.Line)
		case stagehand.Del:
			out, err = splice(out, e.Start, e.End)
		case stagehand.Replace:
			out, err = splice(out, e.Start, e.End, e.Lines...)
		default:
			err = fmt.Errorf("linediff: unknown edit %T", e)
		}
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ApplyTo drives a Splicer with the script instead of building a new
// sequence, for hosts that patch a live buffer in place.
func ApplyTo(s stagehand.Splicer, edits []stagehand.Edit) error {
	for _, e := range edits {
		var err error
		switch e := e.(type) {
		case stagehand.Flush:
		case stagehand.Ins:
			err = s.Splice(e.Pos, e.Pos, []string{e.Line})
		case stagehand.Del:
			err = s.Splice(e.Start, e.End, nil)
		case stagehand.Replace:
			err = s.Splice(e.Start, e.End, e.Lines)
		default:
			err = fmt.Errorf("linediff: unknown edit %T", e)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func splice(seq []string, start, end int, lines ...string) ([]string, error) {
	if start < 0 || end < start || end > len(seq) {
		return nil, fmt.Errorf("linediff: splice [%d,%d) out of range for %d lines", start, end, len(seq))
	}
	out := make([]string, 0, len(seq)-(end-start)+len(lines))
	out = append(out, seq[:start]...)
	out = append(out, lines...)
	out = append(out, seq[end:]...)
	return out, nil
}
