package driving

import (
	"context"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

// RecommendService ranks patterns for queries through the external ranker.
type RecommendService interface {
	// Recommend returns up to topK ranked patterns per query, in batch order.
	Recommend(ctx context.Context, queries []domain.Query, topK int) ([]domain.Recommendation, error)
}
