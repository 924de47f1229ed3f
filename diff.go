// Package stagehand provides domain types for parsing git diffs and
// synthesizing partial patches from line selections.
package stagehand

// Span is a half-open byte range [Start, End) into the text a Diff was
// parsed from.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether the byte offset lies within the span.
func (s Span) Contains(offset int) bool { return s.Start <= offset && offset < s.End }

// Diff is a git diff split into its positional parts. Commits, Headers and
// Hunks are ordered by position of first occurrence; every span indexes
// into Text. The model is immutable: build a fresh one per snapshot and
// discard it after use.
type Diff struct {
	Text    string
	Commits []Commit
	Headers []FileHeader
	Hunks   []Hunk
}

// Raw returns the text covered by a span.
func (d *Diff) Raw(s Span) string { return d.Text[s.Start:s.End] }

// HunkAt returns the hunk whose span contains the byte offset, or nil.
func (d *Diff) HunkAt(offset int) *Hunk {
	for i := range d.Hunks {
		if d.Hunks[i].Span.Contains(offset) {
			return &d.Hunks[i]
		}
	}
	return nil
}

// HeaderFor returns the nearest file header preceding the hunk, or nil if
// the hunk appears before any header.
func (d *Diff) HeaderFor(h *Hunk) *FileHeader {
	var found *FileHeader
	for i := range d.Headers {
		if d.Headers[i].Span.Start > h.Span.Start {
			break
		}
		found = &d.Headers[i]
	}
	return found
}

// CommitFor returns the nearest commit marker preceding the hunk, or nil.
// Plain (non log-style) diffs carry no commit markers.
func (d *Diff) CommitFor(h *Hunk) *Commit {
	var found *Commit
	for i := range d.Commits {
		if d.Commits[i].Span.Start > h.Span.Start {
			break
		}
		found = &d.Commits[i]
	}
	return found
}

// HunksFor returns the hunks owned by the given header, in order.
func (d *Diff) HunksFor(header *FileHeader) []*Hunk {
	var hunks []*Hunk
	for i := range d.Hunks {
		if d.HeaderFor(&d.Hunks[i]) == header {
			hunks = append(hunks, &d.Hunks[i])
		}
	}
	return hunks
}

// Commit marks one "commit <hash>" line of a multi-commit (log or stash
// style) diff.
type Commit struct {
	Hash string
	Span Span
}

// FileHeader identifies the file a run of hunks belongs to: the "diff --git"
// line through the last meta line before the first hunk.
type FileHeader struct {
	OldPath   string // from the "---" line, "a/" stripped; "" for new files
	NewPath   string // from the "+++" line, "b/" stripped; "" for deleted files
	OldObject string // blob id from the "index" line, "" when absent
	NewObject string
	Span      Span
}

// Path returns the b-side path, falling back to the a-side for deletions.
func (h *FileHeader) Path() string {
	if h.NewPath != "" {
		return h.NewPath
	}
	return h.OldPath
}

// HunkSide is one (start, length) pair of a hunk header. Start is 1-based
// per git convention, except that a side with Length == 0 denotes a pure
// insertion point and Start names the line the content goes after.
type HunkSide struct {
	Start  int
	Length int
}

// HunkHeader is a parsed "@@ -a,b +c,d @@" line. Sides holds one entry per
// diff side in left-to-right order: two for regular diffs, three for
// combined (merge) diffs.
type HunkHeader struct {
	Sides   []HunkSide
	Section string // trailing context after the closing "@@", "" when absent
	Span    Span
}

// Combined reports whether the header came from an "@@@" (merge) hunk.
func (h *HunkHeader) Combined() bool { return len(h.Sides) != 2 }

// Old returns the a-side of the header.
func (h *HunkHeader) Old() HunkSide { return h.Sides[0] }

// New returns the b-side of the header.
func (h *HunkHeader) New() HunkSide { return h.Sides[len(h.Sides)-1] }

// LineType represents the type of a diff line.
type LineType int

// Line types.
const (
	LineContext LineType = iota
	LineAdded
	LineDeleted
)

// Line is a single body line of a hunk.
type Line struct {
	Type      LineType
	Content   string // text after the prefix column(s), without the newline
	Offset    int    // absolute byte offset of the line start in Diff.Text
	NoNewline bool   // a "\ No newline at end of file" marker follows
}

// Hunk is one "@@ ... @@" block: the header line plus its body lines. Span
// covers the header through the last body line, so slicing Diff.Text with
// it reconstructs the hunk byte for byte.
type Hunk struct {
	Header HunkHeader
	Lines  []Line
	Span   Span
}

// HasContext reports whether any body line is a context line.
func (h *Hunk) HasContext() bool {
	for _, l := range h.Lines {
		if l.Type == LineContext {
			return true
		}
	}
	return false
}

// NumberedLine pairs a hunk body line with the (old, new) file lines it
// covers.
type NumberedLine struct {
	Line Line
	Old  int
	New  int
}
