package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
)

// Ensure EmbeddingCache implements the interface.
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

// EmbeddingCache is an in-memory implementation of driven.EmbeddingCache.
// Entries live for the lifetime of the process.
type EmbeddingCache struct {
	mu      sync.RWMutex
	entries map[driven.EmbeddingKey][][]float32
}

// NewEmbeddingCache creates a new in-memory embedding cache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{
		entries: make(map[driven.EmbeddingKey][][]float32),
	}
}

// Load returns a copy of the vectors stored under key.
func (c *EmbeddingCache) Load(_ context.Context, key driven.EmbeddingKey) ([][]float32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vectors, ok := c.entries[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneVectors(vectors), nil
}

// Save stores a copy of vectors under key, dropping any entry that differs
// from key only in dimensions.
func (c *EmbeddingCache) Save(_ context.Context, key driven.EmbeddingKey, vectors [][]float32) error {
	for i, v := range vectors {
		if len(v) != key.Dimensions {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", domain.ErrInvalidInput, i, len(v), key.Dimensions)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.Fingerprint == key.Fingerprint && k.Space == key.Space && k.Model == key.Model && k.Facet == key.Facet {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cloneVectors(vectors)
	return nil
}

// Keys lists the stored keys ordered by fingerprint, space, model, dimensions
// and facet.
func (c *EmbeddingCache) Keys(_ context.Context) ([]driven.EmbeddingKey, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]driven.EmbeddingKey, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Fingerprint != b.Fingerprint {
			return a.Fingerprint < b.Fingerprint
		}
		if a.Space != b.Space {
			return a.Space < b.Space
		}
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		if a.Dimensions != b.Dimensions {
			return a.Dimensions < b.Dimensions
		}
		return a.Facet < b.Facet
	})
	return keys, nil
}

// Purge removes entries whose fingerprint differs from keep.
func (c *EmbeddingCache) Purge(_ context.Context, keep string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if keep == "" || k.Fingerprint != keep {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

// Close is a no-op.
func (c *EmbeddingCache) Close() error {
	return nil
}

func cloneVectors(vectors [][]float32) [][]float32 {
	out := make([][]float32, len(vectors))
	for i, v := range vectors {
		out[i] = append([]float32(nil), v...)
	}
	return out
}
