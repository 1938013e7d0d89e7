package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driving"
)

// Ensure PatternService implements the interface.
var _ driving.PatternService = (*PatternService)(nil)

// CorpusProvider returns the corpus currently served.
type CorpusProvider interface {
	Corpus() *domain.Corpus
}

// FixedCorpus serves one corpus that never changes.
func FixedCorpus(c *domain.Corpus) CorpusProvider {
	return fixedCorpus{c}
}

type fixedCorpus struct{ c *domain.Corpus }

func (f fixedCorpus) Corpus() *domain.Corpus { return f.c }

// PatternService looks up pattern records.
type PatternService struct {
	corpus CorpusProvider
}

// NewPatternService creates a pattern service.
func NewPatternService(corpus CorpusProvider) *PatternService {
	return &PatternService{corpus: corpus}
}

// Get returns the record for a pattern ID ("data-minimization"), a file name
// ("data-minimization.md") or a document ID as written to feature files.
func (s *PatternService) Get(id string) (*domain.PatternRecord, error) {
	corpus := s.corpus.Corpus()
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "#")
	id = strings.TrimPrefix(id, docIDPrefix)

	if r, ok := corpus.Record(strings.TrimSuffix(id, ".md")); ok {
		return &r, nil
	}
	for _, p := range corpus.Patterns() {
		if p.DocID() == id || strings.EqualFold(p.Title, id) {
			if r, ok := corpus.Record(p.ID); ok {
				return &r, nil
			}
		}
	}
	return nil, fmt.Errorf("pattern %q: %w", id, domain.ErrNotFound)
}

// List returns the patterns in corpus order.
func (s *PatternService) List() []domain.Pattern {
	return s.corpus.Corpus().Patterns()
}
