package driven

import (
	"context"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

// EmbeddingKey addresses one cached embedding matrix.
// Fingerprint ties the entry to the exact corpus contents and ordering.
// Model and Dimensions tie it to the encoder that produced it; the same model
// name can be served at several output sizes.
type EmbeddingKey struct {
	Fingerprint string
	Space       domain.EmbeddingSpace
	Model       string
	Dimensions  int
	Facet       domain.Facet
}

// EmbeddingCache persists pattern-side embeddings, index-aligned with the corpus.
type EmbeddingCache interface {
	// Load returns the vectors for key, or domain.ErrNotFound on a miss.
	Load(ctx context.Context, key EmbeddingKey) ([][]float32, error)

	// Save stores the vectors for key, replacing any previous entry for the
	// same fingerprint, space, model and facet. Every vector must have
	// key.Dimensions components.
	Save(ctx context.Context, key EmbeddingKey, vectors [][]float32) error

	// Keys lists all cached entries.
	Keys(ctx context.Context) ([]EmbeddingKey, error)

	// Purge removes every entry whose fingerprint differs from keep.
	// An empty keep removes everything. It returns the number of entries removed.
	Purge(ctx context.Context, keep string) (int, error)

	// Close releases resources.
	Close() error
}
