package git

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fwojciec/stagehand"
)

// Ensure JournaledRepository implements stagehand.Repository.
var _ stagehand.Repository = (*JournaledRepository)(nil)

// JournaledRepository wraps a Repository so that every successful
// ApplyPatch appends a record to a journal. The record carries the
// "git apply" argv the patch maps to, the patch text and the touched
// file paths. A journal write failure is logged, not returned: losing
// a journal entry must not fail an apply that already landed.
type JournaledRepository struct {
	repo    stagehand.Repository
	journal stagehand.Journal
	parser  stagehand.Parser
	logger  *log.Logger
}

// JournalOption configures a JournaledRepository.
type JournalOption func(*JournaledRepository)

// WithJournalLogger sets the logger used to report journal write failures.
func WithJournalLogger(logger *log.Logger) JournalOption {
	return func(r *JournaledRepository) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewJournaledRepository wraps repo. The parser extracts the file paths a
// patch touches for the journal record.
func NewJournaledRepository(repo stagehand.Repository, journal stagehand.Journal, parser stagehand.Parser, opts ...JournalOption) *JournaledRepository {
	r := &JournaledRepository{
		repo:    repo,
		journal: journal,
		parser:  parser,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Changes implements stagehand.Repository.
func (r *JournaledRepository) Changes(ctx context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
	return r.repo.Changes(ctx, req)
}

// ApplyPatch implements stagehand.Repository. The record is appended only
// after the underlying apply succeeds; a failed apply leaves no trace.
func (r *JournaledRepository) ApplyPatch(ctx context.Context, p stagehand.Patch, req stagehand.ApplyRequest) error {
	if err := r.repo.ApplyPatch(ctx, p, req); err != nil {
		return err
	}
	rec := stagehand.ApplyRecord{
		Time: time.Now(),
		Args: ApplyArgs(ApplyOptions{
			Cached:      req.Cached,
			Reverse:     req.Reverse,
			ZeroContext: p.ZeroContext,
		}),
		Patch: p.Text,
		Files: r.files(p.Text),
	}
	if err := r.journal.Append(rec); err != nil {
		r.logger.Error("journal append failed", "err", err)
	}
	return nil
}

// Contents implements stagehand.Repository.
func (r *JournaledRepository) Contents(ctx context.Context, path string, fromHead bool) (string, error) {
	return r.repo.Contents(ctx, path, fromHead)
}

// files lists the paths the patch touches, in patch order, deduplicated.
func (r *JournaledRepository) files(patch string) []string {
	d, err := r.parser.Parse(strings.NewReader(patch))
	if err != nil || d == nil {
		return nil
	}
	seen := make(map[string]bool, len(d.Headers))
	var files []string
	for i := range d.Headers {
		path := d.Headers[i].Path()
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}
	return files
}
