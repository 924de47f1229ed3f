package linediff

import "github.com/fwojciec/stagehand"

// Simplify folds an edit script into fewer, larger ops through a single
// pending-op window. A Flush emits the pending op and is dropped from the
// output. window caps how many lines a growing replacement accumulates
// before it is emitted.
func Simplify(edits []stagehand.Edit, window int) []stagehand.Edit {
	out := make([]stagehand.Edit, 0, len(edits))
	var pending stagehand.Edit
	emit := func() {
		if pending != nil {
			out = append(out, pending)
			pending = nil
		}
	}
	for _, e := range edits {
		switch e := e.(type) {
		case stagehand.Flush:
			emit()
		case stagehand.Ins:
			switch p := pending.(type) {
			case stagehand.Ins:
				if p.Pos+1 == e.Pos {
					pending = stagehand.Replace{Start: p.Pos, End: p.Pos, Lines: []string{p.Line, e.Line}}
					continue
				}
			case stagehand.Del:
				if e.Pos == p.Start {
					pending = stagehand.Replace{Start: p.Start, End: p.End, Lines: []string{e.Line}}
					continue
				}
			case stagehand.Replace:
				if p.Start+len(p.Lines) == e.Pos {
					grown := len(p.Lines)
					p.Lines = append(append([]string(nil), p.Lines...), e.Line)
					if grown >= window {
						out = append(out, p)
						pending = nil
					} else {
						pending = p
					}
					continue
				}
			}
			emit()
			pending = e
		case stagehand.Del:
			switch p := pending.(type) {
			case stagehand.Ins:
				if p.Pos+1 == e.Start {
					out = append(out, stagehand.Replace{Start: p.Pos, End: p.Pos + e.End - e.Start, Lines: []string{p.Line}})
					pending = nil
					continue
				}
			case stagehand.Replace:
				if p.Start+len(p.Lines) == e.Start {
					out = append(out, stagehand.Replace{Start: p.Start, End: p.End + e.End - e.Start, Lines: p.Lines})
					pending = nil
					continue
				}
			}
			emit()
			pending = e
		default:
			emit()
			pending = e
		}
	}
	emit()
	return out
}

// Normalize rewrites a script into canonical form: an insertion landing on
// the boundary a deletion exposed becomes a replacement, adjacent
// insertions collapse into one replacement, back-to-back deletions at one
// position coalesce, and Flush markers are dropped. The result holds only
// Ins, Del and Replace ops, and never a Del immediately followed by an Ins
// at its own start.
func Normalize(edits []stagehand.Edit) []stagehand.Edit {
	out := make([]stagehand.Edit, 0, len(edits))
	var pending stagehand.Edit
	emit := func() {
		if pending != nil {
			out = append(out, pending)
			pending = nil
		}
	}
	for _, e := range edits {
		switch e := e.(type) {
		case stagehand.Flush:
			emit()
		case stagehand.Ins:
			switch p := pending.(type) {
			case stagehand.Del:
				if e.Pos == p.Start {
					pending = stagehand.Replace{Start: p.Start, End: p.End, Lines: []string{e.Line}}
					continue
				}
			case stagehand.Ins:
				if p.Pos+1 == e.Pos {
					pending = stagehand.Replace{Start: p.Pos, End: p.Pos, Lines: []string{p.Line, e.Line}}
					continue
				}
			case stagehand.Replace:
				if p.Start+len(p.Lines) == e.Pos {
					p.Lines = append(append([]string(nil), p.Lines...), e.Line)
					pending = p
					continue
				}
			}
			emit()
			pending = e
		case stagehand.Del:
			if p, ok := pending.(stagehand.Del); ok && p.Start == e.Start {
				pending = stagehand.Del{Start: p.Start, End: p.End + e.End - e.Start}
				continue
			}
			emit()
			pending = e
		default:
			emit()
			pending = e
		}
	}
	emit()
	return out
}
