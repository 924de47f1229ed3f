package chroma

import (
	"path/filepath"

	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/fwojciec/stagehand"
)

// Compile-time interface verification.
var _ stagehand.LanguageDetector = (*Detector)(nil)

// Detector identifies the language of a file from its path using chroma's
// lexer registry.
type Detector struct{}

// NewDetector creates a new chroma-based language detector.
func NewDetector() *Detector {
	return &Detector{}
}

// DetectFromPath returns the language name for a file path, or an empty
// string when no lexer matches.
func (d *Detector) DetectFromPath(path string) string {
	lexer := lexers.Match(filepath.Base(path))
	if lexer == nil {
		return ""
	}
	return lexer.Config().Name
}
