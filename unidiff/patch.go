package unidiff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fwojciec/stagehand"
)

// miniHunk is a synthesized hunk before renumbering. content is raw diff
// body text, newline terminated, markers included.
type miniHunk struct {
	aStart, aLen int
	bStart, bLen int
	content      string
}

func (m miniHunk) additionsOnly() bool { return m.aLen == 0 && m.bLen > 0 }
func (m miniHunk) removalsOnly() bool  { return m.bLen == 0 && m.aLen > 0 }

// anchor is the raw counter walk position for one body line: the first
// body line carries the header starts untouched; every later line first
// advances its own side's counter, a context line advancing both.
type anchor struct {
	old, new int
}

func anchors(h *stagehand.Hunk) []anchor {
	old := h.Header.Old().Start
	new := h.Header.New().Start
	out := make([]anchor, 0, len(h.Lines))
	for i, line := range h.Lines {
		if i > 0 {
			switch line.Type {
			case stagehand.LineContext:
				old++
				new++
			case stagehand.LineDeleted:
				old++
			case stagehand.LineAdded:
				new++
			}
		}
		out = append(out, anchor{old: old, new: new})
	}
	return out
}

// ForSelection synthesizes the sub-patch containing exactly the changed
// lines whose byte offsets are selected. Offsets are treated as a set:
// order and duplicates do not matter, offsets outside any hunk are
// ignored, and context-only selections yield ErrNothingSelected. Unselected
// additions are omitted; unselected deletions survive as (implicit)
// context, so the patch does not revert them. The result is always a
// zero-context patch. reverse renumbers for application with -R.
func ForSelection(d *stagehand.Diff, offsets []int, reverse bool) (stagehand.Patch, error) {
	sorted := append([]int(nil), offsets...)
	sort.Ints(sorted)

	var groups []patchGroup
	index := make(map[*stagehand.FileHeader]int)
	for hi := range d.Hunks {
		h := &d.Hunks[hi]
		sel := selectedLines(h, sorted)
		if len(sel) == 0 {
			continue
		}
		if h.Header.Combined() {
			return stagehand.Patch{}, stagehand.ErrCombinedHunk
		}
		anc := anchors(h)
		var minis []miniHunk
		for _, run := range changedRuns(h.Lines) {
			var idxs []int
			for _, i := range sel {
				if i >= run[0] && i < run[1] {
					idxs = append(idxs, i)
				}
			}
			if len(idxs) > 0 {
				minis = append(minis, formPatch(d, h, idxs, anc))
			}
		}
		if len(minis) == 0 {
			continue // only context was selected
		}
		header := d.HeaderFor(h)
		if header == nil {
			continue // a bare hunk with no file is not applicable
		}
		gi, ok := index[header]
		if !ok {
			gi = len(groups)
			index[header] = gi
			groups = append(groups, patchGroup{header: header})
		}
		groups[gi].minis = append(groups[gi].minis, minis...)
	}
	if len(groups) == 0 {
		return stagehand.Patch{}, stagehand.ErrNothingSelected
	}
	return stagehand.Patch{Text: render(d, groups, reverse), ZeroContext: true}, nil
}

// ForHunks emits whole hunks renumbered so the subset applies standalone.
// ZeroContext is set when any emitted hunk carries no context lines.
func ForHunks(d *stagehand.Diff, hunks []*stagehand.Hunk, reverse bool) (stagehand.Patch, error) {
	ordered := append([]*stagehand.Hunk(nil), hunks...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Span.Start < ordered[j].Span.Start })

	zero := false
	var groups []patchGroup
	index := make(map[*stagehand.FileHeader]int)
	var prev *stagehand.Hunk
	for _, h := range ordered {
		if h == nil || h == prev {
			continue
		}
		prev = h
		if h.Header.Combined() {
			return stagehand.Patch{}, stagehand.ErrCombinedHunk
		}
		header := d.HeaderFor(h)
		if header == nil {
			continue
		}
		if !h.HasContext() {
			zero = true
		}
		m := miniHunk{
			aStart:  h.Header.Old().Start,
			aLen:    h.Header.Old().Length,
			bStart:  h.Header.New().Start,
			bLen:    h.Header.New().Length,
			content: hunkBody(d, h),
		}
		gi, ok := index[header]
		if !ok {
			gi = len(groups)
			index[header] = gi
			groups = append(groups, patchGroup{header: header})
		}
		groups[gi].minis = append(groups[gi].minis, m)
	}
	if len(groups) == 0 {
		return stagehand.Patch{}, stagehand.ErrNothingSelected
	}
	return stagehand.Patch{Text: render(d, groups, reverse), ZeroContext: zero}, nil
}

type patchGroup struct {
	header *stagehand.FileHeader
	minis  []miniHunk
}

func render(d *stagehand.Diff, groups []patchGroup, reverse bool) string {
	var buf strings.Builder
	for _, g := range groups {
		buf.WriteString(d.Raw(g.header.Span))
		for _, m := range rewrite(g.minis, reverse) {
			fmt.Fprintf(&buf, "@@ -%d,%d +%d,%d @@\n%s", m.aStart, m.aLen, m.bStart, m.bLen, m.content)
		}
	}
	return buf.String()
}

// selectedLines maps sorted byte offsets to the hunk's body line indexes.
func selectedLines(h *stagehand.Hunk, sorted []int) []int {
	var sel []int
	for _, off := range sorted {
		if !h.Span.Contains(off) {
			continue
		}
		i := lineIndexAt(h, off)
		if i < 0 {
			continue // header row
		}
		if n := len(sel); n > 0 && sel[n-1] == i {
			continue
		}
		sel = append(sel, i)
	}
	return sel
}

// changedRuns returns the index ranges of maximal non-context line runs.
func changedRuns(lines []stagehand.Line) [][2]int {
	var runs [][2]int
	for i := 0; i < len(lines); {
		if lines[i].Type == stagehand.LineContext {
			i++
			continue
		}
		j := i
		for j < len(lines) && lines[j].Type != stagehand.LineContext {
			j++
		}
		runs = append(runs, [2]int{i, j})
		i = j
	}
	return runs
}

// formPatch builds one mini hunk from the selected line indexes of a
// single changed run. Anchors come from the raw counter walk; when the
// selection starts with deletions and ends with additions, the b anchor
// comes from the first selected addition, so both sides name the position
// the modification lives at.
func formPatch(d *stagehand.Diff, h *stagehand.Hunk, idxs []int, anc []anchor) miniHunk {
	first, last := idxs[0], idxs[len(idxs)-1]
	aStart := anc[first].old
	bStart := anc[first].new
	if h.Lines[first].Type == stagehand.LineDeleted && h.Lines[last].Type == stagehand.LineAdded {
		for _, i := range idxs {
			if h.Lines[i].Type == stagehand.LineAdded {
				bStart = anc[i].new
				break
			}
		}
	}
	var aLen, bLen int
	var content strings.Builder
	for _, i := range idxs {
		switch h.Lines[i].Type {
		case stagehand.LineDeleted:
			aLen++
		case stagehand.LineAdded:
			bLen++
		case stagehand.LineContext:
			aLen++
			bLen++
		}
		content.WriteString(rawLine(d, h, i))
	}
	return miniHunk{aStart: aStart, aLen: aLen, bStart: bStart, bLen: bLen, content: content.String()}
}

// rewrite renumbers a file's hunks so the subset applies standalone: each
// b start is the a start plus the net line delta of the hunks emitted
// before it. A hunk with a zero-length side anchors after a line rather
// than at one, hence the one-off correction. The reverse form recomputes
// the a side from the b side with the corrections flipped, for -R.
func rewrite(minis []miniHunk, reverse bool) []miniHunk {
	out := make([]miniHunk, len(minis))
	offset := 0
	for i, m := range minis {
		if reverse {
			aStart := m.bStart - offset
			switch {
			case m.additionsOnly():
				aStart--
			case m.removalsOnly():
				aStart++
			}
			m.aStart = aStart
		} else {
			bStart := m.aStart + offset
			switch {
			case m.additionsOnly():
				bStart++
			case m.removalsOnly():
				bStart--
			}
			m.bStart = bStart
		}
		out[i] = m
		offset += m.bLen - m.aLen
	}
	return out
}

// rawLine slices one body line out of the diff text, trailing newline and
// any no-newline marker line included.
func rawLine(d *stagehand.Diff, h *stagehand.Hunk, i int) string {
	start := h.Lines[i].Offset
	end := h.Span.End
	if i+1 < len(h.Lines) {
		end = h.Lines[i+1].Offset
	}
	raw := d.Text[start:end]
	if !strings.HasSuffix(raw, "\n") {
		raw += "\n"
	}
	return raw
}

func hunkBody(d *stagehand.Diff, h *stagehand.Hunk) string {
	if len(h.Lines) == 0 {
		return ""
	}
	raw := d.Text[h.Lines[0].Offset:h.Span.End]
	if !strings.HasSuffix(raw, "\n") {
		raw += "\n"
	}
	return raw
}
