package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/core/ports/driving"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// Ensure CacheService implements the interface.
var _ driving.CacheService = (*CacheService)(nil)

// CacheService manages the persisted pattern embeddings of the served corpus.
type CacheService struct {
	corpus   CorpusProvider
	encoders Encoders
	cache    driven.EmbeddingCache
}

// NewCacheService creates a cache service.
func NewCacheService(corpus CorpusProvider, encoders Encoders, cache driven.EmbeddingCache) *CacheService {
	return &CacheService{corpus: corpus, encoders: encoders, cache: cache}
}

// Warm loads the pattern embeddings, encoding and saving whatever is missing.
func (s *CacheService) Warm(ctx context.Context) error {
	if s.cache == nil {
		return fmt.Errorf("%w: no embedding cache configured", domain.ErrInvalidInput)
	}
	corpus := s.corpus.Corpus()
	if _, err := loadPatternEmbeddings(ctx, corpus, s.encoders, s.cache); err != nil {
		return fmt.Errorf("warm embedding cache: %w", err)
	}
	logger.Info("Embedding cache warm for corpus %s", corpus.Fingerprint())
	return nil
}

// Fingerprint returns the fingerprint of the served corpus.
func (s *CacheService) Fingerprint() string {
	return s.corpus.Corpus().Fingerprint()
}

// Entries lists the cached entries.
func (s *CacheService) Entries(ctx context.Context) ([]driven.EmbeddingKey, error) {
	if s.cache == nil {
		return []driven.EmbeddingKey{}, nil
	}
	return s.cache.Keys(ctx)
}

// PurgeStale removes entries of other corpus versions, or everything when all is set.
func (s *CacheService) PurgeStale(ctx context.Context, all bool) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	keep := s.Fingerprint()
	if all {
		keep = ""
	}
	n, err := s.cache.Purge(ctx, keep)
	if err != nil {
		return 0, fmt.Errorf("purge embedding cache: %w", err)
	}
	logger.Info("Purged %d cache entries", n)
	return n, nil
}
