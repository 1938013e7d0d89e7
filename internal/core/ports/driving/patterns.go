package driving

import "github.com/custodia-labs/ppltr/internal/core/domain"

// PatternService looks up corpus entries, e.g. to show a recommended solution.
type PatternService interface {
	// Get returns the record for a pattern ID or document ID.
	Get(id string) (*domain.PatternRecord, error)

	// List returns the patterns in corpus order.
	List() []domain.Pattern
}
