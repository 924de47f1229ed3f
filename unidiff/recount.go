package unidiff

import (
	"strings"

	"github.com/fwojciec/stagehand"
)

// Recount assigns (old, new) file line numbers to every body line of a
// hunk. Within a maximal run of deletions immediately followed by
// additions, the first min(k, m) lines of each run are paired rank by rank
// and share a tuple, the way a reader sees a modification rather than a
// delete plus an insert. Excess deletions keep consuming old lines while
// the new pointer stays put; excess additions the reverse.
func Recount(h *stagehand.Hunk) ([]stagehand.NumberedLine, error) {
	if h.Header.Combined() {
		return nil, stagehand.ErrCombinedHunk
	}
	numbered := make([]stagehand.NumberedLine, 0, len(h.Lines))
	old := h.Header.Old().Start
	new := h.Header.New().Start
	lines := h.Lines
	for i := 0; i < len(lines); {
		if lines[i].Type == stagehand.LineContext {
			numbered = append(numbered, stagehand.NumberedLine{Line: lines[i], Old: old, New: new})
			old++
			new++
			i++
			continue
		}
		j := i
		for j < len(lines) && lines[j].Type == stagehand.LineDeleted {
			j++
		}
		l := j
		for l < len(lines) && lines[l].Type == stagehand.LineAdded {
			l++
		}
		k, m := j-i, l-j
		for r := 0; r < k; r++ {
			n := new
			if m > 0 {
				n += min(r, m-1)
			}
			numbered = append(numbered, stagehand.NumberedLine{Line: lines[i+r], Old: old + r, New: n})
		}
		for r := 0; r < m; r++ {
			numbered = append(numbered, stagehand.NumberedLine{Line: lines[j+r], Old: old + min(r, k), New: new + r})
		}
		old += k
		new += m
		i = l
	}
	return numbered, nil
}

// NewLineNumbers returns the b-side file line number for every body line,
// in order: the jump-to-file view of Recount.
func NewLineNumbers(h *stagehand.Hunk) ([]int, error) {
	numbered, err := Recount(h)
	if err != nil {
		return nil, err
	}
	ns := make([]int, len(numbered))
	for i, n := range numbered {
		ns[i] = n.New
	}
	return ns, nil
}

// FilePosition translates a byte offset in the diff text to a line and
// column in the b-side file, for jump-to-file. The bool is false when the
// offset does not land inside a two-sided hunk with a known file.
func FilePosition(d *stagehand.Diff, offset int) (stagehand.JumpTarget, bool) {
	hunk := d.HunkAt(offset)
	if hunk == nil || hunk.Header.Combined() {
		return stagehand.JumpTarget{}, false
	}
	header := d.HeaderFor(hunk)
	if header == nil || header.Path() == "" {
		return stagehand.JumpTarget{}, false
	}
	numbered, err := Recount(hunk)
	if err != nil || len(numbered) == 0 {
		return stagehand.JumpTarget{}, false
	}
	path := header.Path()

	// on the @@ line itself: land on the first surviving line that has
	// visible content
	if offset < numbered[0].Line.Offset {
		for _, n := range numbered {
			if n.Line.Type != stagehand.LineDeleted && strings.TrimSpace(n.Line.Content) != "" {
				return stagehand.JumpTarget{Path: path, Line: n.New, Col: 1}, true
			}
		}
		return stagehand.JumpTarget{Path: path, Line: numbered[0].New, Col: 1}, true
	}

	i := lineIndexAt(hunk, offset)
	if i < 0 {
		return stagehand.JumpTarget{}, false
	}
	cur := numbered[i]
	col := clampCol(offset-cur.Line.Offset, cur.Line.Content)

	if cur.Line.Type != stagehand.LineDeleted {
		return stagehand.JumpTarget{Path: path, Line: cur.New, Col: col}, true
	}

	// the cursor line no longer exists in the file: fall forward to the
	// closest surviving line
	indent := leadingWhitespace(cur.Line.Content)
	for j := i + 1; j < len(numbered); j++ {
		next := numbered[j]
		switch next.Line.Type {
		case stagehand.LineAdded:
			return stagehand.JumpTarget{Path: path, Line: next.New, Col: clampCol(col, next.Line.Content)}, true
		case stagehand.LineContext:
			if strings.HasPrefix(next.Line.Content, indent) {
				return stagehand.JumpTarget{Path: path, Line: next.New, Col: len(indent) + 1}, true
			}
			return stagehand.JumpTarget{Path: path, Line: max(1, cur.New-1), Col: 1}, true
		}
	}
	return stagehand.JumpTarget{Path: path, Line: cur.New, Col: 1}, true
}

// HunkAtFileLine returns the hunk of the given file whose b-side range
// covers the 1-based file line, or nil. Deletion-only hunks leave no lines
// behind, so they get two grace lines around the gap; a hunk ending in a
// no-newline marker gets one more.
func HunkAtFileLine(d *stagehand.Diff, path string, line int) *stagehand.Hunk {
	for i := range d.Hunks {
		h := &d.Hunks[i]
		if h.Header.Combined() {
			continue
		}
		header := d.HeaderFor(h)
		if header == nil || header.Path() != path {
			continue
		}
		b := h.Header.New()
		length := b.Length
		if h.Header.Old().Length > 0 && b.Length == 0 {
			length += 2
		}
		if hasNoNewlineMarker(h) {
			length++
		}
		if length < 1 {
			length = 1
		}
		if b.Start <= line && line < b.Start+length {
			return h
		}
	}
	return nil
}

// lineIndexAt returns the index of the body line whose bytes contain the
// offset, or -1 for an offset on the header line.
func lineIndexAt(h *stagehand.Hunk, offset int) int {
	for i := len(h.Lines) - 1; i >= 0; i-- {
		if offset >= h.Lines[i].Offset {
			return i
		}
	}
	return -1
}

func hasNoNewlineMarker(h *stagehand.Hunk) bool {
	for _, l := range h.Lines {
		if l.NoNewline {
			return true
		}
	}
	return false
}

// clampCol converts a byte distance from the line start (prefix column
// included) into a 1-based content column.
func clampCol(col int, content string) int {
	if col < 1 {
		return 1
	}
	if col > len(content)+1 {
		return len(content) + 1
	}
	return col
}

func leadingWhitespace(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, " \t"))]
}
