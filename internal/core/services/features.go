package services

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driving"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// Ensure FeatureService implements the interface.
var _ driving.FeatureService = (*FeatureService)(nil)

// FeatureService builds feature rows for query batches.
type FeatureService struct {
	engine atomic.Pointer[Engine]
}

// NewFeatureService creates a feature service over engine.
func NewFeatureService(engine *Engine) *FeatureService {
	s := &FeatureService{}
	s.engine.Store(engine)
	return s
}

// Engine returns the current engine.
func (s *FeatureService) Engine() *Engine {
	return s.engine.Load()
}

// Swap replaces the engine, e.g. after the corpus changed on disk.
// Batches already running finish on the engine they started with.
func (s *FeatureService) Swap(engine *Engine) {
	s.engine.Store(engine)
}

// Build encodes the batch and returns one row per (query, pattern), grouped by
// query in batch order.
func (s *FeatureService) Build(ctx context.Context, queries []domain.Query) ([]domain.FeatureRow, error) {
	engine := s.engine.Load()
	logger.Section("Feature Assembly")

	texts, err := batchTexts(queries)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return []domain.FeatureRow{}, nil
	}

	batch, err := engine.Semantic.EncodeQueries(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("encode queries: %w", err)
	}

	patterns := engine.Corpus.Patterns()
	rows := make([]domain.FeatureRow, 0, len(queries)*len(patterns))
	for _, q := range queries {
		vectors, err := engine.Assembler.ConstructFeatures(q, batch)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.QID(), err)
		}
		for i, v := range vectors {
			rows = append(rows, domain.FeatureRow{
				Label:     domain.DefaultLabel,
				QID:       q.QID(),
				PatternID: patterns[i].ID,
				DocID:     patterns[i].DocID(),
				Features:  v,
			})
		}
		logger.Debug("Query %s: %d rows", q.QID(), len(vectors))
	}
	logger.Info("Built %d feature rows for %d queries", len(rows), len(queries))
	return rows, nil
}

// Write builds the rows and writes them in the ranker's text format.
func (s *FeatureService) Write(ctx context.Context, w io.Writer, queries []domain.Query) (int, error) {
	rows, err := s.Build(ctx, queries)
	if err != nil {
		return 0, err
	}
	return WriteFeatureFile(w, rows)
}

// batchTexts validates the batch and lays the texts out by story key.
// Every query needs its own qid so its rows stay contiguous. Queries may
// share a story key only when they share the text.
func batchTexts(queries []domain.Query) ([]string, error) {
	size := 0
	qids := make(map[string]bool, len(queries))
	for _, q := range queries {
		if q.IsBlank() {
			return nil, fmt.Errorf("%w: query %s", domain.ErrEmptyQuery, q.QID())
		}
		if qids[q.QID()] {
			return nil, fmt.Errorf("%w: duplicate qid %s", domain.ErrInvalidInput, q.QID())
		}
		qids[q.QID()] = true
		if q.StoryKey < 0 || q.StoryKey >= len(queries) {
			return nil, fmt.Errorf("%w: key %d, batch of %d", domain.ErrStoryKeyOutOfRange, q.StoryKey, len(queries))
		}
		size = max(size, q.StoryKey+1)
	}

	texts := make([]string, size)
	filled := make([]bool, size)
	for _, q := range queries {
		if filled[q.StoryKey] && texts[q.StoryKey] != q.Text {
			return nil, fmt.Errorf("%w: story key %d used for two texts", domain.ErrInvalidInput, q.StoryKey)
		}
		texts[q.StoryKey] = q.Text
		filled[q.StoryKey] = true
	}
	for k, ok := range filled {
		if !ok {
			return nil, fmt.Errorf("%w: story key %d has no query", domain.ErrInvalidInput, k)
		}
	}
	return texts, nil
}

// Corpus returns the corpus of the current engine.
func (s *FeatureService) Corpus() *domain.Corpus {
	return s.engine.Load().Corpus
}
