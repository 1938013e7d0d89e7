package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

// FeatureService builds learning-to-rank feature rows for a batch of queries.
type FeatureService interface {
	// Build returns one row per (query, pattern), grouped by query in batch order
	// and by pattern in corpus order within a query.
	Build(ctx context.Context, queries []domain.Query) ([]domain.FeatureRow, error)

	// Write builds the rows and writes them in the ranker's text format.
	Write(ctx context.Context, w io.Writer, queries []domain.Query) (int, error)
}
