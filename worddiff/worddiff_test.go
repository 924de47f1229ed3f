package worddiff_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/stagehand"
	"github.com/fwojciec/stagehand/worddiff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func joined(segs []stagehand.Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestDiffer_Diff(t *testing.T) {
	t.Parallel()

	oldSegs, newSegs := worddiff.NewDiffer().Diff("hello world", "hello there")

	assert.Equal(t, []stagehand.Segment{
		{Text: "hello ", Changed: false},
		{Text: "world", Changed: true},
	}, oldSegs)
	assert.Equal(t, []stagehand.Segment{
		{Text: "hello ", Changed: false},
		{Text: "there", Changed: true},
	}, newSegs)
}

func TestDiffer_Diff_SharedPrefixAndSuffix(t *testing.T) {
	t.Parallel()

	oldSegs, newSegs := worddiff.NewDiffer().Diff("(int)", "(int, error)")

	// adjacent unchanged stretches merge on the untouched side
	assert.Equal(t, []stagehand.Segment{{Text: "(int)", Changed: false}}, oldSegs)
	assert.Equal(t, []stagehand.Segment{
		{Text: "(int", Changed: false},
		{Text: ", error", Changed: true},
		{Text: ")", Changed: false},
	}, newSegs)
}

func TestDiffer_Diff_Identical(t *testing.T) {
	t.Parallel()

	oldSegs, newSegs := worddiff.NewDiffer().Diff("same line", "same line")

	assert.Equal(t, []stagehand.Segment{{Text: "same line", Changed: false}}, oldSegs)
	assert.Equal(t, newSegs, oldSegs)
}

func TestDiffer_Diff_EmptySides(t *testing.T) {
	t.Parallel()

	oldSegs, newSegs := worddiff.NewDiffer().Diff("", "fresh")
	assert.Empty(t, oldSegs)
	assert.Equal(t, []stagehand.Segment{{Text: "fresh", Changed: true}}, newSegs)

	oldSegs, newSegs = worddiff.NewDiffer().Diff("stale", "")
	assert.Equal(t, []stagehand.Segment{{Text: "stale", Changed: true}}, oldSegs)
	assert.Empty(t, newSegs)
}

func TestDiffer_Diff_SegmentsReassemble(t *testing.T) {
	t.Parallel()

	d := worddiff.NewDiffer()
	pairs := [][2]string{
		{"func list() int {", "func list() (int, error) {"},
		{"values = chain([MIN, DEFAULT], count(5, 5))", "values = chain([0, MIN, DEFAULT], count(5, 5))"},
		{"short", "a considerably longer replacement line"},
		{"\ttabbed = true", "    spaced = true"},
	}
	for _, p := range pairs {
		oldSegs, newSegs := d.Diff(p[0], p[1])
		require.Equal(t, p[0], joined(oldSegs))
		require.Equal(t, p[1], joined(newSegs))
	}
}
