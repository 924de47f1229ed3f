// Package linediff computes, folds and applies edit scripts over line
// sequences. Lines are opaque tokens compared only for equality, and every
// position in a script indexes the progressively patched sequence: each op
// assumes all earlier ops have already been applied.
package linediff

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/fwojciec/stagehand"
)

// internLimit is the number of distinct tokens the rune interning can hold.
// It stops just short of the surrogate range, which does not survive the
// rune/string round trip inside the diff engine.
const internLimit = 0xD800

// Diff computes an edit script that rewrites old into new. An equal stretch
// advances the position and emits a Flush marker so hosts can batch work per
// synchronized region; a run of deletions removes at the current position
// without advancing; insertions advance one by one. Within a changed region
// deletions come before insertions.
func Diff(old, new []string) []stagehand.Edit {
	codes := make(map[string]rune, len(old)+len(new))
	var tokens []string
	intern := func(toks []string) ([]rune, bool) {
		rs := make([]rune, len(toks))
		for i, tok := range toks {
			r, ok := codes[tok]
			if !ok {
				if len(codes) == internLimit {
					return nil, false
				}
				r = rune(len(codes))
				codes[tok] = r
				tokens = append(tokens, tok)
			}
			rs[i] = r
		}
		return rs, true
	}

	oldRunes, ok := intern(old)
	if ok {
		var newRunes []rune
		if newRunes, ok = intern(new); ok {
			return translate(diffRunes(oldRunes, newRunes), tokens)
		}
	}
	// too many distinct lines to intern: swap the whole sequence
	return []stagehand.Edit{stagehand.Replace{Start: 0, End: len(old), Lines: append([]string(nil), new...)}}
}

func diffRunes(old, new []rune) []diffmatchpatch.Diff {
	dmp := diffmatchpatch.New()
	return dmp.DiffCleanupMerge(dmp.DiffMainRunes(old, new, false))
}

func translate(diffs []diffmatchpatch.Diff, tokens []string) []stagehand.Edit {
	var edits []stagehand.Edit
	pos := 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if n := utf8.RuneCountInString(d.Text); n > 0 {
				pos += n
				edits = append(edits, stagehand.Flush{})
			}
		case diffmatchpatch.DiffDelete:
			if n := utf8.RuneCountInString(d.Text); n > 0 {
				edits = append(edits, stagehand.Del{Start: pos, End: pos + n})
			}
		case diffmatchpatch.DiffInsert:
			for _, r := range d.Text {
				edits = append(edits, stagehand.Ins{Pos: pos, Line: tokens[r]})
				pos++
			}
		}
	}
	return edits
}
