package driving

import (
	"context"

	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
)

// CacheService manages the persisted pattern embeddings.
type CacheService interface {
	// Warm loads or computes the pattern embeddings for the current corpus.
	Warm(ctx context.Context) error

	// Fingerprint returns the fingerprint of the current corpus.
	Fingerprint() string

	// Entries lists cached entries.
	Entries(ctx context.Context) ([]driven.EmbeddingKey, error)

	// PurgeStale removes entries for other corpus versions; all removes everything.
	PurgeStale(ctx context.Context, all bool) (int, error)
}
