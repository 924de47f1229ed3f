// Package bubbletea implements the interactive staging UI. The model
// renders a parsed diff one row per terminal line and turns key presses
// into synthesized partial patches applied through a stagehand.Repository.
package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fwojciec/stagehand"
	"github.com/fwojciec/stagehand/linediff"
	themes "github.com/fwojciec/stagehand/lipgloss"
	"github.com/fwojciec/stagehand/unidiff"
)

// spliceWindow bounds the merge distance when simplifying refresh edit
// scripts. Larger windows coalesce more aggressively at the cost of
// re-rendering rows that did not change.
const spliceWindow = 32

// Option configures a Model.
type Option func(*Model)

// WithRenderer sets the lipgloss renderer used for styling.
func WithRenderer(r *lipgloss.Renderer) Option {
	return func(m *Model) {
		if r != nil {
			m.renderer = r
		}
	}
}

// WithTheme sets the color theme.
func WithTheme(t themes.Theme) Option {
	return func(m *Model) { m.theme = t }
}

// WithTokenizer enables syntax highlighting.
func WithTokenizer(t stagehand.Tokenizer) Option {
	return func(m *Model) { m.tokenizer = t }
}

// WithLanguageDetector sets the detector used to pick a highlight language
// per file.
func WithLanguageDetector(d stagehand.LanguageDetector) Option {
	return func(m *Model) { m.detector = d }
}

// WithWordDiffer enables word-level emphasis on paired delete/add lines.
func WithWordDiffer(w stagehand.WordDiffer) Option {
	return func(m *Model) { m.wordDiffer = w }
}

// WithRepository enables the staging actions. Without it the model is a
// read-only viewer.
func WithRepository(r stagehand.Repository) Option {
	return func(m *Model) { m.repo = r }
}

// WithSuggester enables commit message suggestions.
func WithSuggester(s stagehand.Suggester) Option {
	return func(m *Model) { m.suggester = s }
}

// WithJumpHandler sets the callback invoked with the cursor's file
// position when the user jumps out of the view.
func WithJumpHandler(fn func(stagehand.JumpTarget)) Option {
	return func(m *Model) { m.onJump = fn }
}

// WithRequest sets the diff request used for refreshes: context width,
// whitespace handling and pathspec scope.
func WithRequest(req stagehand.DiffRequest) Option {
	return func(m *Model) { m.req = req }
}

// WithIndexView starts the model on the index side of the snapshot.
func WithIndexView() Option {
	return func(m *Model) { m.staged = true }
}

// WithContext sets the context passed to repository and suggester calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// keyMap holds the key bindings of the staging view.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	HalfUp     key.Binding
	HalfDown   key.Binding
	Top        key.Binding
	Bottom     key.Binding
	NextHunk   key.Binding
	PrevHunk   key.Binding
	NextFile   key.Binding
	PrevFile   key.Binding
	Mark       key.Binding
	Range      key.Binding
	Stage      key.Binding
	Unstage    key.Binding
	Discard    key.Binding
	Switch     key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Whitespace key.Binding
	Jump       key.Binding
	Suggest    key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "move")),
		Down:       key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/k", "move")),
		HalfUp:     key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u/d", "half page")),
		HalfDown:   key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+u/d", "half page")),
		Top:        key.NewBinding(key.WithKeys("g"), key.WithHelp("gg/G", "top/bottom")),
		Bottom:     key.NewBinding(key.WithKeys("G"), key.WithHelp("gg/G", "top/bottom")),
		NextHunk:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n/N", "hunk")),
		PrevHunk:   key.NewBinding(key.WithKeys("N"), key.WithHelp("n/N", "hunk")),
		NextFile:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]/[", "file")),
		PrevFile:   key.NewBinding(key.WithKeys("["), key.WithHelp("]/[", "file")),
		Mark:       key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "mark")),
		Range:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "range")),
		Stage:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stage")),
		Unstage:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unstage")),
		Discard:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard")),
		Switch:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "side")),
		ZoomIn:     key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "context")),
		ZoomOut:    key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("+/-", "context")),
		Whitespace: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "whitespace")),
		Jump:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Suggest:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "suggest")),
		Cancel:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Mark, k.Stage, k.Unstage, k.Discard, k.Switch, k.Jump, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.HalfDown, k.Top, k.NextHunk, k.NextFile},
		{k.Mark, k.Range, k.Stage, k.Unstage, k.Discard},
		{k.Switch, k.ZoomIn, k.Whitespace, k.Jump, k.Suggest},
		{k.Help, k.Cancel, k.Quit},
	}
}

// confirmState holds a destructive action awaiting a y/N answer.
type confirmState struct {
	prompt string
	patch  stagehand.Patch
	req    stagehand.ApplyRequest
	verb   string
}

// refreshedMsg carries the snapshot fetched after an action. staged picks
// the side to display.
type refreshedMsg struct {
	snap   stagehand.RepoSnapshot
	staged bool
	note   string
	err    error
}

// suggestedMsg carries a commit message suggestion.
type suggestedMsg struct {
	subject string
	err     error
}

// Model is the bubbletea model for the staging view.
type Model struct {
	diff       *stagehand.Diff
	repo       stagehand.Repository
	suggester  stagehand.Suggester
	tokenizer  stagehand.Tokenizer
	detector   stagehand.LanguageDetector
	wordDiffer stagehand.WordDiffer
	onJump     func(stagehand.JumpTarget)

	ctx      context.Context
	renderer *lipgloss.Renderer
	theme    themes.Theme
	styles   styles
	keys     keyMap
	help     help.Model

	staged bool
	req    stagehand.DiffRequest

	rows      []row
	tokens    []string
	styled    []string
	gutter    int
	fileAdds  []int
	fileDels  []int
	fileHunks []int
	filePos   []int
	hunkPos   []int

	hunkTokens map[int][][]stagehand.Token
	hunkSegs   map[int]map[int][]stagehand.Segment

	cursor   int
	marks    map[int]bool
	anchor   int
	pendingG bool
	confirm  *confirmState
	flash    string
	busy     bool

	vp     viewport.Model
	ready  bool
	width  int
	height int
}

// NewModel creates a staging view over the parsed diff.
func NewModel(diff *stagehand.Diff, opts ...Option) Model {
	m := Model{
		ctx:      context.Background(),
		renderer: lipgloss.DefaultRenderer(),
		theme:    themes.DefaultTheme(),
		keys:     defaultKeyMap(),
		help:     help.New(),
		anchor:   -1,
		marks:    map[int]bool{},
		req:      stagehand.DiffRequest{Context: stagehand.DefaultContext},
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.styles = newStyles(m.renderer, m.theme)
	m.rebuild(diff)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.layout()
		m.restyle()
		m.refreshContent()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case refreshedMsg:
		m.busy = false
		if msg.err != nil {
			m.flash = msg.err.Error()
			return m, nil
		}
		text := msg.snap.Worktree
		if msg.staged {
			text = msg.snap.Index
		}
		m.staged = msg.staged
		m.applyRefresh(unidiff.NewParser().ParseString(text))
		m.flash = msg.note
		return m, nil

	case suggestedMsg:
		m.busy = false
		if msg.err != nil {
			m.flash = "suggest: " + msg.err.Error()
		} else {
			m.flash = fmt.Sprintf("msg: %q", msg.subject)
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) layout() {
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	h := m.height - 2 - helpHeight
	if h < 1 {
		h = 1
	}
	if !m.ready {
		m.vp = viewport.New(m.width, h)
		m.ready = true
		return
	}
	m.vp.Width = m.width
	m.vp.Height = h
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		c := *m.confirm
		m.confirm = nil
		if s := msg.String(); s == "y" || s == "Y" {
			return m, m.startApply(c.patch, c.req, c.verb)
		}
		m.flash = "cancelled"
		return m, nil
	}

	if m.pendingG {
		m.pendingG = false
		if msg.String() == "g" {
			m.moveTo(0)
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.HalfDown):
		m.move(m.vp.Height / 2)
	case key.Matches(msg, m.keys.HalfUp):
		m.move(-m.vp.Height / 2)
	case key.Matches(msg, m.keys.Bottom):
		m.moveTo(len(m.rows) - 1)
	case key.Matches(msg, m.keys.Top):
		m.pendingG = true
	case key.Matches(msg, m.keys.NextHunk):
		m.jumpRows(m.hunkPos, 1)
	case key.Matches(msg, m.keys.PrevHunk):
		m.jumpRows(m.hunkPos, -1)
	case key.Matches(msg, m.keys.NextFile):
		m.jumpRows(m.filePos, 1)
	case key.Matches(msg, m.keys.PrevFile):
		m.jumpRows(m.filePos, -1)
	case key.Matches(msg, m.keys.Mark):
		m.toggleMark()
	case key.Matches(msg, m.keys.Range):
		m.toggleRange()
	case key.Matches(msg, m.keys.Cancel):
		m.cancel()
	case key.Matches(msg, m.keys.Stage):
		cmd = m.stage()
	case key.Matches(msg, m.keys.Unstage):
		cmd = m.unstage()
	case key.Matches(msg, m.keys.Discard):
		cmd = m.discard()
	case key.Matches(msg, m.keys.Switch):
		cmd = m.switchSide()
	case key.Matches(msg, m.keys.ZoomIn):
		cmd = m.zoom(1)
	case key.Matches(msg, m.keys.ZoomOut):
		cmd = m.zoom(-1)
	case key.Matches(msg, m.keys.Whitespace):
		cmd = m.toggleWhitespace()
	case key.Matches(msg, m.keys.Jump):
		cmd = m.jump()
	case key.Matches(msg, m.keys.Suggest):
		cmd = m.suggest()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		m.refreshContent()
	}
	return m, cmd
}

func (m *Model) move(delta int) {
	m.moveTo(m.cursor + delta)
}

func (m *Model) moveTo(idx int) {
	if len(m.rows) == 0 {
		return
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(m.rows) {
		idx = len(m.rows) - 1
	}
	m.cursor = idx
	m.scrollToCursor()
	m.refreshContent()
}

func (m *Model) scrollToCursor() {
	if m.cursor < m.vp.YOffset {
		m.vp.SetYOffset(m.cursor)
	} else if m.cursor >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(m.cursor - m.vp.Height + 1)
	}
}

// jumpRows moves the cursor to the next (dir > 0) or previous position in
// the sorted list.
func (m *Model) jumpRows(positions []int, dir int) {
	if dir > 0 {
		for _, p := range positions {
			if p > m.cursor {
				m.moveTo(p)
				return
			}
		}
		return
	}
	for i := len(positions) - 1; i >= 0; i-- {
		if positions[i] < m.cursor {
			m.moveTo(positions[i])
			return
		}
	}
}

func (m *Model) toggleMark() {
	if len(m.rows) == 0 {
		return
	}
	r := m.rows[m.cursor]
	switch r.kind {
	case rowLine:
		if m.marks[m.cursor] {
			delete(m.marks, m.cursor)
		} else {
			m.marks[m.cursor] = true
		}
	case rowHunk:
		m.toggleHunkMarks(r.hunk)
	default:
		m.flash = "mark lines or hunks"
	}
	m.refreshContent()
}

// toggleHunkMarks marks every changed line of the hunk, or clears them all
// when every changed line is already marked.
func (m *Model) toggleHunkMarks(hi int) {
	var idxs []int
	all := true
	for i, r := range m.rows {
		if r.kind != rowLine || r.hunk != hi {
			continue
		}
		if m.diff.Hunks[hi].Lines[r.line].Type == stagehand.LineContext {
			continue
		}
		idxs = append(idxs, i)
		if !m.marks[i] {
			all = false
		}
	}
	for _, i := range idxs {
		if all {
			delete(m.marks, i)
		} else {
			m.marks[i] = true
		}
	}
}

func (m *Model) toggleRange() {
	if m.anchor < 0 {
		m.anchor = m.cursor
		m.flash = "select: move, then v to mark"
		m.refreshContent()
		return
	}
	lo, hi, _ := m.rangeBounds()
	for i := lo; i <= hi && i < len(m.rows); i++ {
		if m.rows[i].kind == rowLine && m.diff.Hunks[m.rows[i].hunk].Lines[m.rows[i].line].Type != stagehand.LineContext {
			m.marks[i] = true
		}
	}
	m.anchor = -1
	m.flash = ""
	m.refreshContent()
}

func (m *Model) rangeBounds() (lo, hi int, ok bool) {
	if m.anchor < 0 {
		return 0, 0, false
	}
	lo, hi = m.anchor, m.cursor
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi, true
}

func (m *Model) cancel() {
	switch {
	case m.anchor >= 0:
		m.anchor = -1
	case len(m.marks) > 0:
		m.marks = map[int]bool{}
	default:
		m.flash = ""
	}
	m.refreshContent()
}

// selection resolves what the next action applies to: explicitly marked
// offsets when any exist, otherwise the row under the cursor. A cursor on
// a hunk or file header selects whole hunks.
func (m *Model) selection() ([]int, []*stagehand.Hunk) {
	set := map[int]bool{}
	for i := range m.marks {
		if i < len(m.rows) && m.rows[i].kind == rowLine {
			set[m.rows[i].offset] = true
		}
	}
	if lo, hi, ok := m.rangeBounds(); ok {
		for i := lo; i <= hi && i < len(m.rows); i++ {
			if m.rows[i].kind == rowLine {
				set[m.rows[i].offset] = true
			}
		}
	}
	if len(set) > 0 {
		offsets := make([]int, 0, len(set))
		for off := range set {
			offsets = append(offsets, off)
		}
		return offsets, nil
	}
	if len(m.rows) == 0 {
		return nil, nil
	}
	switch r := m.rows[m.cursor]; r.kind {
	case rowLine:
		return []int{r.offset}, nil
	case rowHunk:
		return nil, []*stagehand.Hunk{&m.diff.Hunks[r.hunk]}
	case rowFile:
		return nil, m.diff.HunksFor(&m.diff.Headers[r.file])
	}
	return nil, nil
}

// synthesize builds the patch for the current selection and counts the
// changed lines it covers.
func (m *Model) synthesize(reverse bool) (stagehand.Patch, int, error) {
	offsets, hunks := m.selection()
	switch {
	case len(offsets) > 0:
		patch, err := unidiff.ForSelection(m.diff, offsets, reverse)
		return patch, m.countChanged(offsets), err
	case len(hunks) > 0:
		patch, err := unidiff.ForHunks(m.diff, hunks, reverse)
		n := 0
		for _, h := range hunks {
			for _, ln := range h.Lines {
				if ln.Type != stagehand.LineContext {
					n++
				}
			}
		}
		return patch, n, err
	}
	return stagehand.Patch{}, 0, stagehand.ErrNothingSelected
}

func (m *Model) countChanged(offsets []int) int {
	set := map[int]bool{}
	for _, off := range offsets {
		set[off] = true
	}
	n := 0
	for _, r := range m.rows {
		if r.kind != rowLine || !set[r.offset] {
			continue
		}
		if m.diff.Hunks[r.hunk].Lines[r.line].Type != stagehand.LineContext {
			n++
		}
	}
	return n
}

func (m *Model) stage() tea.Cmd {
	if m.busy {
		return nil
	}
	if m.repo == nil {
		m.flash = "read-only view"
		return nil
	}
	if m.staged {
		m.flash = "already staged; u unstages"
		return nil
	}
	patch, n, err := m.synthesize(false)
	if err != nil {
		m.flash = flashFor(err)
		return nil
	}
	return m.startApply(patch, stagehand.ApplyRequest{Cached: true}, "staged "+countNoun(n, "line"))
}

func (m *Model) unstage() tea.Cmd {
	if m.busy {
		return nil
	}
	if m.repo == nil {
		m.flash = "read-only view"
		return nil
	}
	if !m.staged {
		m.flash = "nothing staged here; tab shows the index"
		return nil
	}
	patch, n, err := m.synthesize(true)
	if err != nil {
		m.flash = flashFor(err)
		return nil
	}
	return m.startApply(patch, stagehand.ApplyRequest{Cached: true, Reverse: true}, "unstaged "+countNoun(n, "line"))
}

func (m *Model) discard() tea.Cmd {
	if m.busy {
		return nil
	}
	if m.repo == nil {
		m.flash = "read-only view"
		return nil
	}
	if m.staged {
		m.flash = "discard from the worktree view"
		return nil
	}
	patch, n, err := m.synthesize(true)
	if err != nil {
		m.flash = flashFor(err)
		return nil
	}
	m.confirm = &confirmState{
		prompt: fmt.Sprintf("discard %s? y/N", countNoun(n, "line")),
		patch:  patch,
		req:    stagehand.ApplyRequest{Reverse: true},
		verb:   "discarded " + countNoun(n, "line"),
	}
	return nil
}

func (m *Model) switchSide() tea.Cmd {
	if m.busy {
		return nil
	}
	if m.repo == nil {
		m.flash = "read-only view"
		return nil
	}
	return m.startRefresh(!m.staged, "")
}

func (m *Model) zoom(dir int) tea.Cmd {
	if m.busy {
		return nil
	}
	if m.repo == nil {
		m.flash = "read-only view"
		return nil
	}
	m.req.Context = stagehand.ZoomContext(m.req.Context, dir*5)
	return m.startRefresh(m.staged, fmt.Sprintf("context %d", m.req.Context))
}

func (m *Model) toggleWhitespace() tea.Cmd {
	if m.busy {
		return nil
	}
	if m.repo == nil {
		m.flash = "read-only view"
		return nil
	}
	m.req.IgnoreWhitespace = !m.req.IgnoreWhitespace
	note := "whitespace shown"
	if m.req.IgnoreWhitespace {
		note = "ignoring whitespace"
	}
	return m.startRefresh(m.staged, note)
}

func (m *Model) jump() tea.Cmd {
	if len(m.rows) == 0 {
		return nil
	}
	target, ok := unidiff.FilePosition(m.diff, m.rows[m.cursor].offset)
	if !ok {
		m.flash = "no file position here"
		return nil
	}
	if m.onJump != nil {
		m.onJump(target)
	}
	return tea.Quit
}

func (m *Model) suggest() tea.Cmd {
	if m.busy {
		return nil
	}
	if m.suggester == nil {
		m.flash = "no suggester configured"
		return nil
	}
	if len(m.diff.Hunks) == 0 {
		m.flash = "nothing to suggest"
		return nil
	}
	patch, _, err := m.synthesize(false)
	if err != nil {
		hunks := make([]*stagehand.Hunk, 0, len(m.diff.Hunks))
		for i := range m.diff.Hunks {
			hunks = append(hunks, &m.diff.Hunks[i])
		}
		patch, err = unidiff.ForHunks(m.diff, hunks, false)
		if err != nil {
			m.flash = flashFor(err)
			return nil
		}
	}
	m.busy = true
	m.flash = "suggesting…"
	sg, ctx, text := m.suggester, m.ctx, patch.Text
	return func() tea.Msg {
		subject, err := sg.Suggest(ctx, text)
		return suggestedMsg{subject: subject, err: err}
	}
}

// startApply applies the patch and refetches the snapshot in one command,
// so the view never shows a stale diff after a successful apply.
func (m *Model) startApply(patch stagehand.Patch, req stagehand.ApplyRequest, verb string) tea.Cmd {
	m.busy = true
	m.flash = "applying…"
	repo, ctx, dreq, staged := m.repo, m.ctx, m.req, m.staged
	return func() tea.Msg {
		if err := repo.ApplyPatch(ctx, patch, req); err != nil {
			return refreshedMsg{err: err}
		}
		snap, err := repo.Changes(ctx, dreq)
		return refreshedMsg{snap: snap, staged: staged, note: verb, err: err}
	}
}

func (m *Model) startRefresh(staged bool, note string) tea.Cmd {
	m.busy = true
	repo, ctx, req := m.repo, m.ctx, m.req
	return func() tea.Msg {
		snap, err := repo.Changes(ctx, req)
		return refreshedMsg{snap: snap, staged: staged, note: note, err: err}
	}
}

// applyRefresh swaps in the next diff. Instead of replacing the rendered
// view wholesale it computes an edit script between the old and new row
// tokens, carries the cursor through it and splices the styled row cache,
// so unchanged regions keep their rendering and the viewport stays put.
func (m *Model) applyRefresh(next *stagehand.Diff) {
	oldTokens := m.tokens
	oldStyled := m.styled
	m.rebuild(next)
	m.marks = map[int]bool{}
	m.anchor = -1
	m.confirm = nil
	if !m.ready {
		return
	}
	script := linediff.Normalize(linediff.Simplify(linediff.Diff(oldTokens, m.tokens), spliceWindow))
	m.cursor = carryCursor(m.cursor, script)
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
	buf := &styledBuffer{
		lines:  append([]string(nil), oldStyled...),
		render: func(i int) string { return m.renderRow(i, overlay{}) },
	}
	if err := linediff.ApplyTo(buf, script); err != nil || len(buf.lines) != len(m.rows) {
		m.restyle()
	} else {
		m.styled = buf.lines
	}
	m.refreshContent()
	m.scrollToCursor()
}

// carryCursor transforms a row index through an edit script. Positions are
// progressive, so applying the ops in order is exact.
func carryCursor(pos int, script []stagehand.Edit) int {
	for _, e := range script {
		switch e := e.(type) {
		case stagehand.Ins:
			if e.Pos <= pos {
				pos++
			}
		case stagehand.Del:
			switch {
			case e.End <= pos:
				pos -= e.End - e.Start
			case e.Start <= pos:
				pos = e.Start
			}
		case stagehand.Replace:
			n := len(e.Lines)
			switch {
			case e.End <= pos:
				pos += n - (e.End - e.Start)
			case e.Start <= pos && pos >= e.Start+n:
				pos = max(e.Start+n-1, e.Start)
			}
		}
	}
	return max(pos, 0)
}

// styledBuffer applies an edit script to the styled row cache, re-rendering
// only the spliced regions. Progressive positions equal final positions for
// the scripts linediff emits, so render indexes the rebuilt rows directly.
type styledBuffer struct {
	lines  []string
	render func(i int) string
}

func (b *styledBuffer) Splice(start, end int, lines []string) error {
	if start < 0 || end < start || end > len(b.lines) {
		return fmt.Errorf("splice [%d, %d) out of range 0..%d", start, end, len(b.lines))
	}
	repl := make([]string, len(lines))
	for i := range lines {
		repl[i] = b.render(start + i)
	}
	out := make([]string, 0, len(b.lines)-(end-start)+len(repl))
	out = append(out, b.lines[:start]...)
	out = append(out, repl...)
	out = append(out, b.lines[end:]...)
	b.lines = out
	return nil
}

// FilePositions returns the row indexes of the file header rows.
func (m Model) FilePositions() []int {
	return append([]int(nil), m.filePos...)
}

// HunkPositions returns the row indexes of the hunk header rows.
func (m Model) HunkPositions() []int {
	return append([]int(nil), m.hunkPos...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading…"
	}
	return m.headerView() + "\n" + m.vp.View() + "\n" + m.statusView() + "\n" + m.help.View(m.keys)
}

func (m Model) headerView() string {
	side := "worktree"
	switch {
	case m.repo == nil:
		side = "read-only"
	case m.staged:
		side = "index"
	}
	parts := []string{"stagehand", side, fmt.Sprintf("ctx %d", m.req.Context)}
	if m.req.IgnoreWhitespace {
		parts = append(parts, "-w")
	}
	if len(m.req.Paths) > 0 {
		parts = append(parts, strings.Join(m.req.Paths, " "))
	}
	return m.styles.header.Width(m.width).MaxWidth(m.width).Render(" " + strings.Join(parts, " · "))
}

func (m Model) statusView() string {
	cell := "j/k · n/N · ]/[ · q"
	switch {
	case m.confirm != nil:
		cell = m.confirm.prompt
	case m.flash != "":
		cell = m.flash
	}
	var parts []string
	if len(m.diff.Headers) > 0 {
		parts = append(parts, fmt.Sprintf("file %d/%d", m.currentFile(), len(m.diff.Headers)))
	}
	if len(m.diff.Hunks) > 0 {
		parts = append(parts, fmt.Sprintf("hunk %d/%d", m.currentHunk(), len(m.diff.Hunks)))
	}
	parts = append(parts, m.scrollLabel(), cell)
	return m.styles.status.Width(m.width).MaxWidth(m.width).Render(" " + strings.Join(parts, " │ "))
}

func (m Model) scrollLabel() string {
	switch {
	case m.vp.AtTop():
		return "Top"
	case m.vp.AtBottom():
		return "Bot"
	default:
		return fmt.Sprintf("%.f%%", m.vp.ScrollPercent()*100)
	}
}

func (m Model) currentFile() int {
	n := 0
	for _, p := range m.filePos {
		if p > m.cursor {
			break
		}
		n++
	}
	return max(n, 1)
}

func (m Model) currentHunk() int {
	n := 0
	for _, p := range m.hunkPos {
		if p > m.cursor {
			break
		}
		n++
	}
	return max(n, 1)
}

// refreshContent re-assembles the viewport content from the styled cache,
// overlaying the cursor and selection rows.
func (m *Model) refreshContent() {
	if !m.ready {
		return
	}
	if len(m.rows) == 0 {
		m.vp.SetContent(m.emptyView())
		return
	}
	lo, hi, live := m.rangeBounds()
	var b strings.Builder
	for i := range m.rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		marked := m.marks[i] || (live && lo <= i && i <= hi)
		switch {
		case i == m.cursor:
			b.WriteString(m.renderRow(i, overlay{bg: m.theme.CursorBg, marked: marked}))
		case marked:
			b.WriteString(m.renderRow(i, overlay{bg: m.theme.SelectionBg, marked: true}))
		default:
			b.WriteString(m.styled[i])
		}
	}
	m.vp.SetContent(b.String())
	m.vp.SetYOffset(m.vp.YOffset)
}

func (m Model) emptyView() string {
	panel := EmptyState(m.renderer, m.theme, m.staged, m.repo != nil)
	return m.renderer.Place(m.width, m.vp.Height, lipgloss.Center, lipgloss.Center, panel)
}

func flashFor(err error) string {
	if errors.Is(err, stagehand.ErrNothingSelected) {
		return "nothing to stage"
	}
	return err.Error()
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
