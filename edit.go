package stagehand

// Edit is one operation of an edit script over a line sequence. The
// concrete types are Ins, Del, Replace and Flush. Positions index the
// progressively patched sequence, so a script applies in order, front to
// back, with no offset bookkeeping on the consumer side.
type Edit interface {
	edit()
}

// Ins inserts one line at position Pos, shifting later lines down.
type Ins struct {
	Pos  int
	Line string
}

// Del removes the lines in [Start, End).
type Del struct {
	Start int
	End   int
}

// Replace substitutes the lines in [Start, End) with Lines.
type Replace struct {
	Start int
	End   int
	Lines []string
}

// Flush separates independent regions of a script. Merging passes never
// combine operations across a Flush; applying one is a no-op.
type Flush struct{}

func (Ins) edit()     {}
func (Del) edit()     {}
func (Replace) edit() {}
func (Flush) edit()   {}

// Splicer is the consumer side of an edit script: a replace-region
// primitive over some line buffer. Hosts implement it once and replay
// whole scripts through it.
type Splicer interface {
	Splice(start, end int, lines []string) error
}
