package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternRecord_SlugAndHumanizedName(t *testing.T) {
	r := PatternRecord{Filename: "data-minimization.md"}
	assert.Equal(t, "data-minimization", r.Slug())
	assert.Equal(t, "data minimization", r.HumanizedName())

	noExt := PatternRecord{Filename: "location-granularity"}
	assert.Equal(t, "location-granularity", noExt.Slug())

	inner := PatternRecord{Filename: "privacy.mdx-policy.md"}
	assert.Equal(t, "privacyx-policy", inner.Slug())
	assert.Equal(t, "privacyx policy", inner.HumanizedName())
}

func TestPattern_TextAndDocID(t *testing.T) {
	p := Pattern{ID: "data-minimization", Title: "data minimization", Excerpt: "ex", FullText: "full"}
	assert.Equal(t, "full", p.Text(FacetFullText))
	assert.Equal(t, "data minimization", p.Text(FacetTitle))
	assert.Equal(t, "ex", p.Text(FacetExcerpt))
	assert.Equal(t, "data-minimization", p.DocID())
}

func TestFacet_IsValid(t *testing.T) {
	for _, f := range AllFacets() {
		assert.True(t, f.IsValid(), f.String())
	}
	assert.False(t, Facet("body").IsValid())
}

func newTestCorpus() *Corpus {
	patterns := []Pattern{
		{ID: "a", Title: "a", Excerpt: "x", FullText: "a. x."},
		{ID: "b", Title: "b", Excerpt: "y", FullText: "b. y."},
	}
	records := []PatternRecord{{Filename: "a.md", Excerpt: "x"}, {Filename: "b.md", Excerpt: "y"}}
	return NewCorpus(patterns, records)
}

func TestCorpus_Accessors(t *testing.T) {
	c := newTestCorpus()
	require.Equal(t, 2, c.Len())
	assert.Equal(t, CorpusIndex{"a", "b"}, c.Index())
	assert.Equal(t, []string{"x", "y"}, c.Facet(FacetExcerpt))
	assert.Equal(t, "b", c.At(1).ID)

	rec, ok := c.Record("b")
	require.True(t, ok)
	assert.Equal(t, "b.md", rec.Filename)

	_, ok = c.Record("missing")
	assert.False(t, ok)
}

func TestCorpus_IndexIsACopy(t *testing.T) {
	c := newTestCorpus()
	idx := c.Index()
	idx[0] = "mutated"
	assert.Equal(t, "a", c.Index()[0])
}

func TestCorpus_Fingerprint(t *testing.T) {
	c1 := newTestCorpus()
	c2 := newTestCorpus()
	assert.Equal(t, c1.Fingerprint(), c2.Fingerprint())
	assert.Len(t, c1.Fingerprint(), 64)

	reordered := NewCorpus([]Pattern{c1.At(1), c1.At(0)}, nil)
	assert.NotEqual(t, c1.Fingerprint(), reordered.Fingerprint())

	edited := c1.Patterns()
	edited[0].Excerpt = "changed"
	assert.NotEqual(t, c1.Fingerprint(), NewCorpus(edited, nil).Fingerprint())
}

func TestCorpusIndex(t *testing.T) {
	idx := CorpusIndex{"a", "b", "c"}
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 1, idx.Position("b"))
	assert.Equal(t, -1, idx.Position("z"))
	assert.True(t, idx.Equal(CorpusIndex{"a", "b", "c"}))
	assert.False(t, idx.Equal(CorpusIndex{"a", "c", "b"}))
	assert.False(t, idx.Equal(CorpusIndex{"a"}))
}
