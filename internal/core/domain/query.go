package domain

import (
	"fmt"
	"strings"
)

// QueryKind distinguishes requirements written for a single story from
// requirements derived from a group of stories.
type QueryKind string

// Query kinds.
const (
	// QueryKindIndividual is a requirement for one user story.
	QueryKindIndividual QueryKind = "individual"

	// QueryKindGroup is a requirement for a grouped data-flow diagram.
	QueryKindGroup QueryKind = "group"
)

// Prefix returns the one-character qid prefix written to feature files.
func (k QueryKind) Prefix() string {
	if k == QueryKindGroup {
		return "g"
	}
	return "r"
}

// IsValid returns true if the kind is recognised.
func (k QueryKind) IsValid() bool {
	return k == QueryKindIndividual || k == QueryKindGroup
}

// Query is one requirement text in a transient batch.
type Query struct {
	// Text is the requirement text.
	Text string

	// StoryKey is the position of the query within its encoded batch.
	StoryKey int

	// ID is the caller's identifier (e.g. a requirement row id).
	ID string

	// Kind selects the qid prefix.
	Kind QueryKind
}

// QID returns the grouping identifier used by the external ranker.
// It is never used for computation.
func (q Query) QID() string {
	return q.Kind.Prefix() + q.ID
}

// IsBlank returns true if the query has no non-whitespace text.
func (q Query) IsBlank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// NewQueryBatch assigns story keys to texts in order, using the position as ID
// when ids is nil.
func NewQueryBatch(texts []string, ids []string, kind QueryKind) ([]Query, error) {
	if ids != nil && len(ids) != len(texts) {
		return nil, fmt.Errorf("%w: %d ids for %d texts", ErrInvalidInput, len(ids), len(texts))
	}
	queries := make([]Query, len(texts))
	for i, text := range texts {
		id := fmt.Sprintf("%d", i+1)
		if ids != nil {
			id = ids[i]
		}
		queries[i] = Query{Text: text, StoryKey: i, ID: id, Kind: kind}
	}
	return queries, nil
}
