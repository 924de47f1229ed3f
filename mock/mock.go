// Package mock provides function-field fakes for the stagehand interfaces.
package mock

import (
	"context"
	"io"

	"github.com/fwojciec/stagehand"
)

// Compile-time interface verification.
var (
	_ stagehand.Parser           = (*Parser)(nil)
	_ stagehand.Viewer           = (*Viewer)(nil)
	_ stagehand.Runner           = (*Runner)(nil)
	_ stagehand.Splicer          = (*Splicer)(nil)
	_ stagehand.Tokenizer        = (*Tokenizer)(nil)
	_ stagehand.LanguageDetector = (*LanguageDetector)(nil)
	_ stagehand.WordDiffer       = (*WordDiffer)(nil)
	_ stagehand.Suggester        = (*Suggester)(nil)
	_ stagehand.Previewer        = (*Previewer)(nil)
	_ stagehand.Journal          = (*Journal)(nil)
	_ stagehand.Repository       = (*Repository)(nil)
)

// Parser is a mock implementation of stagehand.Parser.
type Parser struct {
	ParseFn func(r io.Reader) (*stagehand.Diff, error)
}

func (m *Parser) Parse(r io.Reader) (*stagehand.Diff, error) {
	return m.ParseFn(r)
}

// Viewer is a mock implementation of stagehand.Viewer.
type Viewer struct {
	ViewFn func(ctx context.Context, diff *stagehand.Diff) error
}

func (m *Viewer) View(ctx context.Context, diff *stagehand.Diff) error {
	return m.ViewFn(ctx, diff)
}

// Runner is a mock implementation of stagehand.Runner.
type Runner struct {
	RunFn func(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error)
}

func (m *Runner) Run(ctx context.Context, stdin io.Reader, name string, args ...string) ([]byte, error) {
	return m.RunFn(ctx, stdin, name, args...)
}

// Splicer is a mock implementation of stagehand.Splicer.
type Splicer struct {
	SpliceFn func(start, end int, lines []string) error
}

func (m *Splicer) Splice(start, end int, lines []string) error {
	return m.SpliceFn(start, end, lines)
}

// Tokenizer is a mock implementation of stagehand.Tokenizer.
type Tokenizer struct {
	TokenizeLinesFn func(language, source string) [][]stagehand.Token
}

func (m *Tokenizer) TokenizeLines(language, source string) [][]stagehand.Token {
	return m.TokenizeLinesFn(language, source)
}

// LanguageDetector is a mock implementation of stagehand.LanguageDetector.
type LanguageDetector struct {
	DetectFromPathFn func(path string) string
}

func (m *LanguageDetector) DetectFromPath(path string) string {
	return m.DetectFromPathFn(path)
}

// WordDiffer is a mock implementation of stagehand.WordDiffer.
type WordDiffer struct {
	DiffFn func(old, new string) (oldSegs, newSegs []stagehand.Segment)
}

func (m *WordDiffer) Diff(old, new string) (oldSegs, newSegs []stagehand.Segment) {
	return m.DiffFn(old, new)
}

// Suggester is a mock implementation of stagehand.Suggester.
type Suggester struct {
	SuggestFn func(ctx context.Context, patch string) (string, error)
}

func (m *Suggester) Suggest(ctx context.Context, patch string) (string, error) {
	return m.SuggestFn(ctx, patch)
}

// Previewer is a mock implementation of stagehand.Previewer.
type Previewer struct {
	PreviewFn func(content, patch string) (string, error)
}

func (m *Previewer) Preview(content, patch string) (string, error) {
	return m.PreviewFn(content, patch)
}

// Repository is a mock implementation of stagehand.Repository.
type Repository struct {
	ChangesFn    func(ctx context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error)
	ApplyPatchFn func(ctx context.Context, p stagehand.Patch, req stagehand.ApplyRequest) error
	ContentsFn   func(ctx context.Context, path string, fromHead bool) (string, error)
}

func (m *Repository) Changes(ctx context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
	return m.ChangesFn(ctx, req)
}

func (m *Repository) ApplyPatch(ctx context.Context, p stagehand.Patch, req stagehand.ApplyRequest) error {
	return m.ApplyPatchFn(ctx, p, req)
}

func (m *Repository) Contents(ctx context.Context, path string, fromHead bool) (string, error) {
	return m.ContentsFn(ctx, path, fromHead)
}

// Journal is a mock implementation of stagehand.Journal.
type Journal struct {
	AppendFn func(rec stagehand.ApplyRecord) error
	LoadFn   func() ([]stagehand.ApplyRecord, error)
}

func (m *Journal) Append(rec stagehand.ApplyRecord) error {
	return m.AppendFn(rec)
}

func (m *Journal) Load() ([]stagehand.ApplyRecord, error) {
	return m.LoadFn()
}
