package stagehand

import "io"

// Parser splits unified-diff text into the structural model. The input
// text is kept verbatim so parsed elements can point back into it.
type Parser interface {
	// Parse consumes r and returns the split diff.
	Parse(r io.Reader) (*Diff, error)
}
