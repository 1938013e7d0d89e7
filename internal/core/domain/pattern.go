package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Heading is one titled section of a pattern description.
type Heading struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PatternRecord is a privacy design pattern as described in the corpus file.
// Only Filename, Excerpt and Headings feed the feature engine; the remaining
// fields are carried for pattern lookup.
type PatternRecord struct {
	Filename     string    `json:"filename"`
	Title        string    `json:"title,omitempty"`
	Excerpt      string    `json:"excerpt"`
	Type         string    `json:"type,omitempty"`
	Requirements []string  `json:"requirements,omitempty"`
	Goal         string    `json:"goal,omitempty"`
	Categories   []string  `json:"categories,omitempty"`
	Status       string    `json:"status,omitempty"`
	Use          string    `json:"use,omitempty"`
	Com          string    `json:"com,omitempty"`
	Sim          string    `json:"sim,omitempty"`
	Address      string    `json:"address,omitempty"`
	Headings     []Heading `json:"heading"`
}

// Slug returns the stable pattern identifier: the filename with every ".md"
// removed, so "a.md-notes.md" becomes "a-notes".
func (r PatternRecord) Slug() string {
	return strings.ReplaceAll(r.Filename, ".md", "")
}

// HumanizedName returns the filename as a title: extension removed, hyphens as spaces.
func (r PatternRecord) HumanizedName() string {
	return strings.ReplaceAll(r.Slug(), "-", " ")
}

// Facet is one of the textual representations of a pattern.
type Facet string

// Pattern facets.
const (
	// FacetFullText is the composed title + excerpt + heading contents.
	FacetFullText Facet = "full_text"

	// FacetTitle is the humanized filename.
	FacetTitle Facet = "title"

	// FacetExcerpt is the trimmed excerpt.
	FacetExcerpt Facet = "excerpt"
)

// AllFacets returns the facets in feature order.
func AllFacets() []Facet {
	return []Facet{FacetFullText, FacetTitle, FacetExcerpt}
}

// IsValid returns true if the facet is recognised.
func (f Facet) IsValid() bool {
	switch f {
	case FacetFullText, FacetTitle, FacetExcerpt:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f Facet) String() string {
	return string(f)
}

// Pattern is an immutable corpus entry with its three facets.
type Pattern struct {
	// ID is the slug derived from the filename.
	ID string

	// Title is the humanized filename.
	Title string

	// Excerpt is the trimmed excerpt.
	Excerpt string

	// FullText is title, excerpt and heading contents, each period-terminated.
	FullText string
}

// Text returns the pattern text for the given facet.
func (p Pattern) Text(f Facet) string {
	switch f {
	case FacetTitle:
		return p.Title
	case FacetExcerpt:
		return p.Excerpt
	default:
		return p.FullText
	}
}

// DocID returns the document identifier written to feature files:
// the humanized filename with spaces replaced by hyphens.
func (p Pattern) DocID() string {
	return strings.ReplaceAll(p.Title, " ", "-")
}

// CorpusIndex is the ordered list of pattern identifiers. Every per-pattern
// structure (vocabulary rows, BM25 lengths, embedding matrices) is aligned to it.
type CorpusIndex []string

// Len returns the number of patterns in the index.
func (ci CorpusIndex) Len() int {
	return len(ci)
}

// Position returns the position of a pattern ID, or -1 if absent.
func (ci CorpusIndex) Position(id string) int {
	for i, v := range ci {
		if v == id {
			return i
		}
	}
	return -1
}

// Equal reports whether two indexes list the same IDs in the same order.
func (ci CorpusIndex) Equal(other CorpusIndex) bool {
	if len(ci) != len(other) {
		return false
	}
	for i := range ci {
		if ci[i] != other[i] {
			return false
		}
	}
	return true
}

// Corpus is the ordered pattern collection. Its ordering is fixed once built.
type Corpus struct {
	patterns []Pattern
	records  map[string]PatternRecord
	index    CorpusIndex
}

// NewCorpus creates a corpus from parallel pattern and record slices.
func NewCorpus(patterns []Pattern, records []PatternRecord) *Corpus {
	c := &Corpus{
		patterns: make([]Pattern, len(patterns)),
		records:  make(map[string]PatternRecord, len(records)),
		index:    make(CorpusIndex, len(patterns)),
	}
	copy(c.patterns, patterns)
	for i, p := range patterns {
		c.index[i] = p.ID
	}
	for _, r := range records {
		c.records[r.Slug()] = r
	}
	return c
}

// Len returns the number of patterns.
func (c *Corpus) Len() int {
	return len(c.patterns)
}

// Patterns returns a copy of the ordered patterns.
func (c *Corpus) Patterns() []Pattern {
	out := make([]Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// At returns the pattern at position i.
func (c *Corpus) At(i int) Pattern {
	return c.patterns[i]
}

// Index returns the corpus index.
func (c *Corpus) Index() CorpusIndex {
	out := make(CorpusIndex, len(c.index))
	copy(out, c.index)
	return out
}

// Facet returns the ordered texts for one facet.
func (c *Corpus) Facet(f Facet) []string {
	texts := make([]string, len(c.patterns))
	for i, p := range c.patterns {
		texts[i] = p.Text(f)
	}
	return texts
}

// Record returns the raw record for a pattern ID.
func (c *Corpus) Record(id string) (PatternRecord, bool) {
	r, ok := c.records[id]
	return r, ok
}

// Fingerprint returns a content hash over the ordered facets.
// Any change to ordering or text yields a different fingerprint.
func (c *Corpus) Fingerprint() string {
	h := sha256.New()
	for _, p := range c.patterns {
		for _, f := range AllFacets() {
			h.Write([]byte(p.Text(f)))
			h.Write([]byte{0})
		}
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}
