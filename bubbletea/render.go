package bubbletea

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fwojciec/stagehand"
	themes "github.com/fwojciec/stagehand/lipgloss"
	"github.com/fwojciec/stagehand/unidiff"
)

type rowKind int

const (
	rowCommit rowKind = iota
	rowFile
	rowHunk
	rowLine
)

// row is one display line of the diff view. Index fields are -1 when they
// do not apply to the row's kind. old and new are the gutter line numbers,
// 0 for a blank cell.
type row struct {
	kind   rowKind
	commit int
	file   int
	hunk   int
	line   int
	offset int
	old    int
	new    int
}

// overlay adjusts one row's rendering: a background that wins over the
// row's own bands (cursor, selection) and the mark indicator.
type overlay struct {
	bg     lipgloss.Color
	marked bool
}

// styles holds the pre-built lipgloss styles for one renderer and theme.
type styles struct {
	header     lipgloss.Style
	status     lipgloss.Style
	fileHeader lipgloss.Style
	hunkHeader lipgloss.Style
	commit     lipgloss.Style
	gutterCtx  lipgloss.Style
	gutterAdd  lipgloss.Style
	gutterDel  lipgloss.Style
	ctxLine    lipgloss.Style
	addLine    lipgloss.Style
	delLine    lipgloss.Style
	addEmph    lipgloss.Style
	delEmph    lipgloss.Style
	mark       lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, t themes.Theme) styles {
	return styles{
		header:     r.NewStyle().Foreground(t.UIForeground).Background(t.UIBackground).Bold(true),
		status:     r.NewStyle().Foreground(t.UIForeground).Background(t.UIBackground),
		fileHeader: r.NewStyle().Foreground(t.FileHeaderFg).Background(t.FileHeaderBg).Bold(true),
		hunkHeader: r.NewStyle().Foreground(t.HunkHeaderFg),
		commit:     r.NewStyle().Foreground(t.StagedFg).Bold(true),
		gutterCtx:  r.NewStyle().Foreground(t.GutterFg),
		gutterAdd:  r.NewStyle().Foreground(t.AddedGutterFg).Background(t.AddedGutterBg),
		gutterDel:  r.NewStyle().Foreground(t.DeletedGutterFg).Background(t.DeletedGutterBg),
		ctxLine:    r.NewStyle().Foreground(t.ContextFg),
		addLine:    r.NewStyle().Foreground(t.AddedFg).Background(t.AddedBg),
		delLine:    r.NewStyle().Foreground(t.DeletedFg).Background(t.DeletedBg),
		addEmph:    r.NewStyle().Foreground(t.AddedFg).Background(t.EmphasisAddedBg),
		delEmph:    r.NewStyle().Foreground(t.DeletedFg).Background(t.EmphasisDeletedBg),
		mark:       r.NewStyle().Foreground(t.StagedFg).Bold(true),
	}
}

// rebuild derives the row model from a fresh diff and invalidates the
// per-hunk caches. Styling happens separately so that refreshes can splice
// the previous styled rows instead.
func (m *Model) rebuild(d *stagehand.Diff) {
	m.diff = d
	m.rows, m.fileAdds, m.fileDels, m.fileHunks = buildRows(d)
	m.gutter = gutterWidth(m.rows)
	m.tokens = m.buildTokens()
	m.filePos, m.hunkPos = positions(m.rows)
	m.hunkTokens = map[int][][]stagehand.Token{}
	m.hunkSegs = map[int]map[int][]stagehand.Segment{}
	m.styled = nil
}

func (m *Model) restyle() {
	m.styled = make([]string, len(m.rows))
	for i := range m.rows {
		m.styled[i] = m.renderRow(i, overlay{})
	}
}

// buildRows merges commits, file headers and hunks into display order by
// their byte spans and numbers the body lines. Per-file add/delete/hunk
// counts fall out of the same walk.
func buildRows(d *stagehand.Diff) (rows []row, adds, dels, counts []int) {
	adds = make([]int, len(d.Headers))
	dels = make([]int, len(d.Headers))
	counts = make([]int, len(d.Headers))
	ci, fi, hi := 0, 0, 0
	curFile := -1
	for ci < len(d.Commits) || fi < len(d.Headers) || hi < len(d.Hunks) {
		cs, fs, hs := math.MaxInt, math.MaxInt, math.MaxInt
		if ci < len(d.Commits) {
			cs = d.Commits[ci].Span.Start
		}
		if fi < len(d.Headers) {
			fs = d.Headers[fi].Span.Start
		}
		if hi < len(d.Hunks) {
			hs = d.Hunks[hi].Span.Start
		}
		switch {
		case cs <= fs && cs <= hs:
			rows = append(rows, row{kind: rowCommit, commit: ci, file: -1, hunk: -1, line: -1, offset: cs})
			ci++
		case fs <= hs:
			rows = append(rows, row{kind: rowFile, commit: -1, file: fi, hunk: -1, line: -1, offset: fs})
			curFile = fi
			fi++
		default:
			h := &d.Hunks[hi]
			if curFile >= 0 {
				counts[curFile]++
				for _, ln := range h.Lines {
					switch ln.Type {
					case stagehand.LineAdded:
						adds[curFile]++
					case stagehand.LineDeleted:
						dels[curFile]++
					}
				}
			}
			rows = append(rows, row{kind: rowHunk, commit: -1, file: curFile, hunk: hi, line: -1, offset: hs})
			rows = append(rows, lineRows(h, hi, curFile)...)
			hi++
		}
	}
	return rows, adds, dels, counts
}

func lineRows(h *stagehand.Hunk, hi, curFile int) []row {
	rows := make([]row, 0, len(h.Lines))
	nls, err := unidiff.Recount(h)
	for li := range h.Lines {
		r := row{kind: rowLine, commit: -1, file: curFile, hunk: hi, line: li, offset: h.Lines[li].Offset}
		if err == nil {
			switch h.Lines[li].Type {
			case stagehand.LineContext:
				r.old, r.new = nls[li].Old, nls[li].New
			case stagehand.LineAdded:
				r.new = nls[li].New
			case stagehand.LineDeleted:
				r.old = nls[li].Old
			}
		}
		rows = append(rows, r)
	}
	return rows
}

func positions(rows []row) (files, hunks []int) {
	for i, r := range rows {
		switch r.kind {
		case rowFile:
			files = append(files, i)
		case rowHunk:
			hunks = append(hunks, i)
		}
	}
	return files, hunks
}

// buildTokens derives the splice identity of every row: the text the user
// sees, qualified by the owning file path so equal-looking lines from
// different files never alias across a refresh.
func (m *Model) buildTokens() []string {
	tokens := make([]string, len(m.rows))
	for i, r := range m.rows {
		path := ""
		if r.file >= 0 {
			path = m.diff.Headers[r.file].Path()
		}
		switch r.kind {
		case rowCommit:
			tokens[i] = "\x00commit " + m.diff.Commits[r.commit].Hash
		case rowFile:
			tokens[i] = path + "\x00── " + path + " " + m.fileStats(r.file)
		case rowHunk:
			tokens[i] = path + "\x00" + m.hunkHeaderText(r.hunk)
		case rowLine:
			ln := m.diff.Hunks[r.hunk].Lines[r.line]
			tokens[i] = path + "\x00" +
				gutterCell(r.old, m.gutter) + " " + gutterCell(r.new, m.gutter) + " " +
				prefixFor(ln.Type) + ln.Content
		}
	}
	return tokens
}

func (m *Model) fileStats(fi int) string {
	if m.fileHunks[fi] == 0 {
		return "(empty)"
	}
	return fmt.Sprintf("+%d -%d", m.fileAdds[fi], m.fileDels[fi])
}

func (m *Model) hunkHeaderText(hi int) string {
	return strings.TrimRight(m.diff.Raw(m.diff.Hunks[hi].Header.Span), "\r\n")
}

func prefixFor(t stagehand.LineType) string {
	switch t {
	case stagehand.LineAdded:
		return "+"
	case stagehand.LineDeleted:
		return "-"
	}
	return " "
}

func gutterWidth(rows []row) int {
	maxN := 0
	for _, r := range rows {
		if r.old > maxN {
			maxN = r.old
		}
		if r.new > maxN {
			maxN = r.new
		}
	}
	w := len(strconv.Itoa(maxN))
	if w < 4 {
		w = 4
	}
	return w
}

// gutterCell right-aligns a line number in w cells, or returns blank space
// for the missing side of an added or deleted line.
func gutterCell(n, w int) string {
	if n <= 0 {
		return strings.Repeat(" ", w)
	}
	return fmt.Sprintf("%*d", w, n)
}

func (m *Model) renderRow(i int, ov overlay) string {
	switch r := m.rows[i]; r.kind {
	case rowCommit:
		return m.renderCommitRow(r, ov)
	case rowFile:
		return m.renderFileRow(r, ov)
	case rowHunk:
		return m.renderHunkRow(r, ov)
	default:
		return m.renderLineRow(r, ov)
	}
}

func (m *Model) renderCommitRow(r row, ov overlay) string {
	st := m.styles.commit
	if ov.bg != "" {
		st = st.Background(ov.bg)
	}
	return m.fillRight(st, "commit "+m.diff.Commits[r.commit].Hash, ov.bg != "")
}

func (m *Model) renderFileRow(r row, ov overlay) string {
	fh := &m.diff.Headers[r.file]
	s := fmt.Sprintf("── %s ─── %s ", fh.Path(), m.fileStats(r.file))
	if w := lipgloss.Width(s); m.width > w {
		s += strings.Repeat("─", m.width-w)
	}
	st := m.styles.fileHeader
	if ov.bg != "" {
		st = st.Background(ov.bg)
	}
	if m.width > 0 {
		st = st.MaxWidth(m.width)
	}
	return st.Render(s)
}

func (m *Model) renderHunkRow(r row, ov overlay) string {
	st := m.styles.hunkHeader
	if ov.bg != "" {
		st = st.Background(ov.bg)
	}
	return m.fillRight(st, m.hunkHeaderText(r.hunk), ov.bg != "")
}

// fillRight renders text and, when the row carries an overlay background,
// extends it with styled padding to the full view width.
func (m *Model) fillRight(st lipgloss.Style, text string, pad bool) string {
	expanded, col := expandFrom(text, 0)
	s := st.Render(expanded)
	if pad && m.width > col {
		s += st.Render(strings.Repeat(" ", m.width-col))
	}
	if m.width > 0 && col > m.width {
		return m.renderer.NewStyle().MaxWidth(m.width).Render(s)
	}
	return s
}

func (m *Model) renderLineRow(r row, ov overlay) string {
	h := &m.diff.Hunks[r.hunk]
	ln := h.Lines[r.line]

	var prefix string
	var gutter, band, emph lipgloss.Style
	var bandBg lipgloss.Color
	switch ln.Type {
	case stagehand.LineAdded:
		prefix, gutter, band, emph = "+", m.styles.gutterAdd, m.styles.addLine, m.styles.addEmph
		bandBg = m.theme.AddedBg
	case stagehand.LineDeleted:
		prefix, gutter, band, emph = "-", m.styles.gutterDel, m.styles.delLine, m.styles.delEmph
		bandBg = m.theme.DeletedBg
	default:
		prefix, gutter, band, emph = " ", m.styles.gutterCtx, m.styles.ctxLine, m.styles.ctxLine
	}
	if ov.bg != "" {
		gutter = gutter.Background(ov.bg)
		band = band.Background(ov.bg)
		emph = emph.Background(ov.bg)
		bandBg = ov.bg
	}

	var b strings.Builder
	switch {
	case ov.marked:
		b.WriteString(m.styles.mark.Background(bandBg).Render("▎"))
	case bandBg != "":
		b.WriteString(m.renderer.NewStyle().Background(bandBg).Render(" "))
	default:
		b.WriteString(" ")
	}
	b.WriteString(gutter.Render(gutterCell(r.old, m.gutter) + " " + gutterCell(r.new, m.gutter)))
	b.WriteString(band.Render(" " + prefix))

	var p linePainter
	segs := m.segmentsFor(r.hunk)[r.line]
	toks := m.tokensFor(r.hunk)
	switch {
	case len(segs) > 0:
		for _, sg := range segs {
			st := band
			if sg.Changed {
				st = emph
			}
			p.paint(st, sg.Text)
		}
	case toks != nil:
		for _, tok := range toks[r.line] {
			st := band
			if tok.Style.Foreground != "" {
				st = st.Foreground(lipgloss.Color(tok.Style.Foreground))
			}
			if tok.Style.Bold {
				st = st.Bold(true)
			}
			p.paint(st, tok.Text)
		}
	default:
		p.paint(band, ln.Content)
	}
	b.WriteString(p.b.String())

	used := 1 + 2*m.gutter + 3 + p.col
	if fill := m.width - used; fill > 0 {
		b.WriteString(band.Render(strings.Repeat(" ", fill)))
	}
	if m.width > 0 && used > m.width {
		return m.renderer.NewStyle().MaxWidth(m.width).Render(b.String())
	}
	return b.String()
}

// linePainter styles consecutive segments of one code line, tracking the
// visual column so tab stops stay aligned across segment boundaries.
type linePainter struct {
	b   strings.Builder
	col int
}

func (p *linePainter) paint(st lipgloss.Style, text string) {
	expanded, col := expandFrom(text, p.col)
	p.b.WriteString(st.Render(expanded))
	p.col = col
}

// tokensFor lazily tokenizes one hunk's body for syntax highlighting.
// Returns nil when highlighting is off, the language is unknown, or the
// tokenizer's line count disagrees with the hunk. Cached per rebuild, so
// rows kept by a refresh splice never re-tokenize.
func (m *Model) tokensFor(hi int) [][]stagehand.Token {
	if toks, ok := m.hunkTokens[hi]; ok {
		return toks
	}
	var toks [][]stagehand.Token
	if m.tokenizer != nil && m.detector != nil {
		if fh := m.diff.HeaderFor(&m.diff.Hunks[hi]); fh != nil {
			if lang := m.detector.DetectFromPath(fh.Path()); lang != "" {
				h := &m.diff.Hunks[hi]
				parts := make([]string, len(h.Lines))
				for i, ln := range h.Lines {
					parts[i] = ln.Content
				}
				toks = m.tokenizer.TokenizeLines(lang, strings.Join(parts, "\n"))
				if len(toks) != len(h.Lines) {
					toks = nil
				}
			}
		}
	}
	m.hunkTokens[hi] = toks
	return toks
}

// segmentsFor lazily computes word-level emphasis for one hunk: deleted
// and added runs pair by rank, and each pair diffs only when the two lines
// share enough text for emphasis to aid reading.
func (m *Model) segmentsFor(hi int) map[int][]stagehand.Segment {
	if segs, ok := m.hunkSegs[hi]; ok {
		return segs
	}
	segs := map[int][]stagehand.Segment{}
	if m.wordDiffer != nil {
		h := &m.diff.Hunks[hi]
		for _, run := range pairedRuns(h.Lines) {
			dels, adds := run[0], run[1]
			n := min(len(dels), len(adds))
			for k := 0; k < n; k++ {
				old := h.Lines[dels[k]].Content
				new := h.Lines[adds[k]].Content
				if !similar(old, new) {
					continue
				}
				oldSegs, newSegs := m.wordDiffer.Diff(old, new)
				if len(oldSegs) > 0 {
					segs[dels[k]] = oldSegs
				}
				if len(newSegs) > 0 {
					segs[adds[k]] = newSegs
				}
			}
		}
	}
	m.hunkSegs[hi] = segs
	return segs
}

// pairedRuns finds each deleted run directly followed by an added run and
// returns both index lists. The rank pairing matches the line numbering
// rule, so emphasis and gutter numbers agree on what "modified" means.
func pairedRuns(lines []stagehand.Line) [][2][]int {
	var out [][2][]int
	i := 0
	for i < len(lines) {
		if lines[i].Type != stagehand.LineDeleted {
			i++
			continue
		}
		var dels []int
		for i < len(lines) && lines[i].Type == stagehand.LineDeleted {
			dels = append(dels, i)
			i++
		}
		var adds []int
		for i < len(lines) && lines[i].Type == stagehand.LineAdded {
			adds = append(adds, i)
			i++
		}
		if len(adds) > 0 {
			out = append(out, [2][]int{dels, adds})
		}
	}
	return out
}

// similar reports whether two lines share at least 30% of their text as a
// common prefix plus suffix. Fully rewritten lines skip word emphasis and
// render with uniform band styling.
func similar(old, new string) bool {
	if old == "" || new == "" {
		return false
	}
	p := 0
	for p < len(old) && p < len(new) && old[p] == new[p] {
		p++
	}
	s := 0
	for s < len(old)-p && s < len(new)-p && old[len(old)-1-s] == new[len(new)-1-s] {
		s++
	}
	return 2*(p+s)*10 >= 3*(len(old)+len(new))
}
