// Package unidiff parses git unified-diff text into the stagehand model and
// synthesizes partial patches from line selections.
package unidiff

import (
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/stagehand"
)

// Compile-time interface verification.
var _ stagehand.Parser = (*Parser)(nil)

// Parser splits git diff text into commits, file headers and hunks.
type Parser struct{}

// NewParser creates a new diff parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads unified-diff text from r and returns the split model. The
// only possible error is a read failure: malformed regions of the text are
// skipped rather than fatal, because users hand-edit diff views.
func (p *Parser) Parse(r io.Reader) (*stagehand.Diff, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading diff: %w", err)
	}
	return p.ParseString(string(data)), nil
}

// ParseString splits diff text. Unparsable regions are excluded from the
// result, so it cannot fail.
func (p *Parser) ParseString(text string) *stagehand.Diff {
	d := &stagehand.Diff{Text: text}
	pos := 0
	for pos < len(text) {
		rest := text[pos:]
		switch {
		case strings.HasPrefix(rest, "commit "):
			pos = parseCommit(d, pos)
		case strings.HasPrefix(rest, "diff --git ") || strings.HasPrefix(rest, "diff --cc "):
			pos = parseHeader(d, pos)
		case strings.HasPrefix(rest, "@@"):
			pos = parseHunk(d, pos)
		default:
			pos = lineEnd(text, pos)
		}
	}
	return d
}

// parseCommit consumes a "commit <hash>" marker line plus the author, date
// and message lines that follow it, up to the next structural line.
func parseCommit(d *stagehand.Diff, start int) int {
	text := d.Text
	end := lineEnd(text, start)
	hash := strings.TrimSuffix(text[start:end], "\n")[len("commit "):]
	if i := strings.IndexByte(hash, ' '); i >= 0 {
		hash = hash[:i] // drop "(HEAD -> main)" style decorations
	}
	for end < len(text) && !isAnchor(text[end:]) {
		end = lineEnd(text, end)
	}
	d.Commits = append(d.Commits, stagehand.Commit{
		Hash: hash,
		Span: stagehand.Span{Start: start, End: end},
	})
	return end
}

// parseHeader consumes a "diff --git" line and its meta lines (index, mode,
// rename, ---/+++) up to the first hunk or the next structural line.
func parseHeader(d *stagehand.Diff, start int) int {
	text := d.Text
	end := lineEnd(text, start)
	var h stagehand.FileHeader
	for end < len(text) && !isAnchor(text[end:]) {
		lineStart := end
		end = lineEnd(text, end)
		meta := strings.TrimSuffix(text[lineStart:end], "\n")
		switch {
		case strings.HasPrefix(meta, "--- "):
			h.OldPath = headerPath(meta[4:], "a/")
		case strings.HasPrefix(meta, "+++ "):
			h.NewPath = headerPath(meta[4:], "b/")
		case strings.HasPrefix(meta, "index "):
			h.OldObject, h.NewObject = parseIndexLine(meta)
		}
	}
	if h.OldPath == "" && h.NewPath == "" {
		// mode-only or binary entries have no ---/+++ lines
		diffLine := strings.TrimSuffix(text[start:lineEnd(text, start)], "\n")
		h.OldPath, h.NewPath = pathsFromDiffLine(diffLine)
	}
	h.Span = stagehand.Span{Start: start, End: end}
	d.Headers = append(d.Headers, h)
	return end
}

// parseHunk consumes an "@@ ... @@" line and its body. A malformed header
// excludes the whole hunk: the header line is skipped and the body lines
// fall through the main loop as junk.
func parseHunk(d *stagehand.Diff, start int) int {
	text := d.Text
	end := lineEnd(text, start)
	header, err := ParseHunkHeader(text[start:end])
	if err != nil {
		return end
	}
	header.Span = stagehand.Span{Start: start, End: end}
	width := len(header.Sides) - 1

	var lines []stagehand.Line
	for end < len(text) {
		lineStart := end
		next := lineEnd(text, lineStart)
		raw := strings.TrimSuffix(text[lineStart:next], "\n")
		if strings.HasPrefix(raw, `\`) {
			// "\ No newline at end of file" belongs to the line above
			if len(lines) > 0 {
				lines[len(lines)-1].NoNewline = true
			}
			end = next
			continue
		}
		kind, ok := classify(raw, width)
		if !ok {
			break
		}
		content := ""
		if len(raw) >= width {
			content = raw[width:]
		}
		lines = append(lines, stagehand.Line{Type: kind, Content: content, Offset: lineStart})
		end = next
	}
	d.Hunks = append(d.Hunks, stagehand.Hunk{
		Header: header,
		Lines:  lines,
		Span:   stagehand.Span{Start: start, End: end},
	})
	return end
}

// ParseHunkHeader parses an "@@ -a,b +c,d @@ section" line, including the
// combined "@@@" form with one extra old side. A missing ",length" defaults
// to 1. The header's span is left zero; Parse fills it in.
func ParseHunkHeader(line string) (stagehand.HunkHeader, error) {
	line = strings.TrimSuffix(line, "\n")
	ats := 0
	for ats < len(line) && line[ats] == '@' {
		ats++
	}
	if ats < 2 || ats > 3 {
		return stagehand.HunkHeader{}, fmt.Errorf("malformed hunk header %q", line)
	}
	rest := line[ats:]
	sides := make([]stagehand.HunkSide, 0, ats)
	for i := 0; i < ats; i++ {
		side, tail, err := parseSide(rest)
		if err != nil {
			return stagehand.HunkHeader{}, fmt.Errorf("malformed hunk header %q: %w", line, err)
		}
		sides = append(sides, side)
		rest = tail
	}
	closing := " " + strings.Repeat("@", ats)
	if !strings.HasPrefix(rest, closing) {
		return stagehand.HunkHeader{}, fmt.Errorf("malformed hunk header %q", line)
	}
	section := strings.TrimPrefix(rest[len(closing):], " ")
	return stagehand.HunkHeader{Sides: sides, Section: section}, nil
}

// parseSide consumes " -a[,b]" or " +a[,b]" and returns the remainder.
func parseSide(rest string) (stagehand.HunkSide, string, error) {
	if len(rest) < 2 || rest[0] != ' ' || (rest[1] != '-' && rest[1] != '+') {
		return stagehand.HunkSide{}, rest, fmt.Errorf("expected signed range at %q", rest)
	}
	start, tail, err := scanInt(rest[2:])
	if err != nil {
		return stagehand.HunkSide{}, rest, err
	}
	length := 1
	if strings.HasPrefix(tail, ",") {
		length, tail, err = scanInt(tail[1:])
		if err != nil {
			return stagehand.HunkSide{}, rest, err
		}
	}
	return stagehand.HunkSide{Start: start, Length: length}, tail, nil
}

func scanInt(s string) (int, string, error) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, s, fmt.Errorf("expected number at %q", s)
	}
	n := 0
	for _, c := range []byte(s[:i]) {
		n = n*10 + int(c-'0')
	}
	return n, s[i:], nil
}

// classify maps a raw body line to its type. width is the prefix column
// count: 1 for regular hunks, 2 for combined. For combined prefixes a "-"
// anywhere wins over "+". Empty lines count as empty context, which some
// tools emit instead of a lone space.
func classify(raw string, width int) (stagehand.LineType, bool) {
	if raw == "" {
		return stagehand.LineContext, true
	}
	if len(raw) < width {
		return 0, false
	}
	var minus, plus bool
	for i := 0; i < width; i++ {
		switch raw[i] {
		case '-':
			minus = true
		case '+':
			plus = true
		case ' ':
		default:
			return 0, false
		}
	}
	switch {
	case minus:
		return stagehand.LineDeleted, true
	case plus:
		return stagehand.LineAdded, true
	}
	return stagehand.LineContext, true
}

// isAnchor reports whether the text starting here opens a new structural
// element.
func isAnchor(rest string) bool {
	return strings.HasPrefix(rest, "commit ") ||
		strings.HasPrefix(rest, "diff --git ") ||
		strings.HasPrefix(rest, "diff --cc ") ||
		strings.HasPrefix(rest, "@@")
}

// lineEnd returns the index just past the newline of the line starting at
// pos, or len(text) for an unterminated final line.
func lineEnd(text string, pos int) int {
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return pos + i + 1
	}
	return len(text)
}

func headerPath(s, prefix string) string {
	s = strings.TrimSuffix(s, "\t")
	if s == "/dev/null" {
		return ""
	}
	return strings.TrimPrefix(s, prefix)
}

func parseIndexLine(meta string) (oldObject, newObject string) {
	fields := strings.Fields(meta[len("index "):])
	if len(fields) == 0 {
		return "", ""
	}
	before, after, found := strings.Cut(fields[0], "..")
	if !found {
		return "", ""
	}
	return before, after
}

func pathsFromDiffLine(line string) (oldPath, newPath string) {
	if rest, ok := strings.CutPrefix(line, "diff --cc "); ok {
		return rest, rest
	}
	rest, ok := strings.CutPrefix(line, "diff --git ")
	if !ok {
		return "", ""
	}
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return strings.TrimPrefix(rest[:i], "a/"), rest[i+3:]
	}
	return "", ""
}
