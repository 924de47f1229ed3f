// Package gitdiff applies patch text to file content in memory with the
// go-gitdiff engine, so a synthesized patch can be previewed before it is
// handed to git.
package gitdiff

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/fwojciec/stagehand"
)

// Compile-time interface verification.
var _ stagehand.Previewer = (*Previewer)(nil)

// Previewer applies a single-file patch to content it is given.
type Previewer struct{}

// NewPreviewer creates a new Previewer.
func NewPreviewer() *Previewer {
	return &Previewer{}
}

// Preview returns content with the patch applied. The patch must address
// exactly one file; a patch that does not apply is an error.
func (p *Previewer) Preview(content, patch string) (string, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(patch))
	if err != nil {
		return "", fmt.Errorf("parse patch: %w", err)
	}
	if len(files) != 1 {
		return "", fmt.Errorf("patch addresses %d files, want exactly one", len(files))
	}

	var out bytes.Buffer
	if err := gitdiff.Apply(&out, strings.NewReader(content), files[0]); err != nil {
		return "", fmt.Errorf("apply patch: %w", err)
	}
	return out.String(), nil
}
