package gitdiff

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fwojciec/stagehand"
)

// Ensure DryRunRepository implements stagehand.Repository.
var _ stagehand.Repository = (*DryRunRepository)(nil)

// DryRunRepository wraps a Repository so ApplyPatch writes the patch text
// and an in-memory preview of the first touched file instead of applying
// anything. Reads (Changes, Contents) pass through, so the caller still
// sees real repository state. Writes are serialized; hosts that run
// actions on their own goroutines can share one instance.
type DryRunRepository struct {
	repo      stagehand.Repository
	parser    stagehand.Parser
	previewer stagehand.Previewer

	mu  sync.Mutex
	out io.Writer
}

// NewDryRunRepository wraps repo. The parser splits a patch into per-file
// pieces; the previewer applies the first piece to the file's index copy.
func NewDryRunRepository(repo stagehand.Repository, parser stagehand.Parser, previewer stagehand.Previewer, out io.Writer) *DryRunRepository {
	return &DryRunRepository{
		repo:      repo,
		parser:    parser,
		previewer: previewer,
		out:       out,
	}
}

// Changes implements stagehand.Repository.
func (r *DryRunRepository) Changes(ctx context.Context, req stagehand.DiffRequest) (stagehand.RepoSnapshot, error) {
	return r.repo.Changes(ctx, req)
}

// Contents implements stagehand.Repository.
func (r *DryRunRepository) Contents(ctx context.Context, path string, fromHead bool) (string, error) {
	return r.repo.Contents(ctx, path, fromHead)
}

// ApplyPatch implements stagehand.Repository without applying. The patch is
// written out verbatim; for forward patches it is followed by the first
// touched file's content as it would look after a real apply. Reverse
// patches skip the preview: their old side is not the index copy.
func (r *DryRunRepository) ApplyPatch(ctx context.Context, p stagehand.Patch, req stagehand.ApplyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, p.Text)
	if p.Text != "" && !strings.HasSuffix(p.Text, "\n") {
		fmt.Fprintln(r.out)
	}
	if req.Reverse {
		return nil
	}
	r.writePreview(ctx, p.Text)
	return nil
}

func (r *DryRunRepository) writePreview(ctx context.Context, patch string) {
	path, filePatch, inIndex, ok := r.firstFile(patch)
	if !ok {
		return
	}
	var content string
	if inIndex {
		c, err := r.repo.Contents(ctx, path, false)
		if err != nil {
			fmt.Fprintf(r.out, "preview unavailable: %v\n", err)
			return
		}
		content = c
	}
	preview, err := r.previewer.Preview(content, filePatch)
	if err != nil {
		fmt.Fprintf(r.out, "preview unavailable: %v\n", err)
		return
	}
	fmt.Fprintf(r.out, "=== %s after apply ===\n%s", path, preview)
	if preview != "" && !strings.HasSuffix(preview, "\n") {
		fmt.Fprintln(r.out)
	}
}

// firstFile returns the first touched file's path and its slice of the
// patch text. inIndex reports whether the file's old side exists, which is
// what decides whether there is an index copy to preview against.
func (r *DryRunRepository) firstFile(patch string) (path, filePatch string, inIndex, ok bool) {
	d, err := r.parser.Parse(strings.NewReader(patch))
	if err != nil || d == nil || len(d.Headers) == 0 {
		return "", "", false, false
	}
	h := &d.Headers[0]
	end := len(d.Text)
	if len(d.Headers) > 1 {
		end = d.Headers[1].Span.Start
	}
	return h.Path(), d.Text[h.Span.Start:end], h.OldPath != "", true
}
