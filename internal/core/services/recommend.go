package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/core/ports/driving"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// Ensure RecommendService implements the interface.
var _ driving.RecommendService = (*RecommendService)(nil)

// DefaultTopK is the number of patterns recommended per query.
const DefaultTopK = 5

// RecommendService writes a feature file, runs the external ranker over it
// and reads back the best patterns per query.
type RecommendService struct {
	features *FeatureService
	patterns *PatternService
	ranker   driven.Ranker
	workDir  string

	// KeepFiles leaves the feature and ranker output files in the work
	// directory after a run.
	KeepFiles bool
}

// NewRecommendService creates a recommendation service. ranker may be nil,
// in which case Recommend returns domain.ErrRankerUnavailable.
func NewRecommendService(features *FeatureService, ranker driven.Ranker, workDir string) *RecommendService {
	return &RecommendService{
		features: features,
		patterns: NewPatternService(features),
		ranker:   ranker,
		workDir:  workDir,
	}
}

// Recommend ranks the corpus for every query and returns up to topK patterns
// per query, in batch order. A query the ranker output has no rows for makes
// the whole output malformed.
func (s *RecommendService) Recommend(ctx context.Context, queries []domain.Query, topK int) ([]domain.Recommendation, error) {
	if s.ranker == nil {
		return nil, domain.ErrRankerUnavailable
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	dir := s.workDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}

	runID := uuid.New().String()
	featurePath := filepath.Join(dir, fmt.Sprintf("ltr_%s.txt", runID))
	outputPath := filepath.Join(dir, fmt.Sprintf("ltr_output_%s.txt", runID))
	if !s.KeepFiles {
		defer func() {
			_ = os.Remove(featurePath)
			_ = os.Remove(outputPath)
		}()
	}

	logger.Section("Recommendation")
	logger.Debug("Run %s: features=%s output=%s", runID, featurePath, outputPath)

	if err := s.writeFeatures(ctx, featurePath, queries); err != nil {
		return nil, err
	}
	if err := s.ranker.Rank(ctx, featurePath, outputPath); err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	f, err := os.Open(outputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open ranker output: %v", domain.ErrMalformedRankerOutput, err)
	}
	defer f.Close()

	ranked, err := ReadRanked(f, topK)
	if err != nil {
		return nil, err
	}

	recs := make([]domain.Recommendation, 0, len(queries))
	for _, q := range queries {
		qid := q.QID()
		docIDs, ok := ranked[qid]
		if !ok {
			return nil, fmt.Errorf("%w: no ranked rows for query %s", domain.ErrMalformedRankerOutput, qid)
		}
		rec := domain.Recommendation{QID: qid, DocIDs: docIDs}
		for _, id := range rec.DocIDs {
			r, err := s.patterns.Get(id)
			if err != nil {
				logger.Warn("Ranked document %q not in corpus", id)
				continue
			}
			rec.Patterns = append(rec.Patterns, *r)
		}
		recs = append(recs, rec)
	}
	logger.Info("Recommended patterns for %d queries", len(recs))
	return recs, nil
}

func (s *RecommendService) writeFeatures(ctx context.Context, path string, queries []domain.Query) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create feature file: %w", err)
	}
	n, err := s.features.Write(ctx, f, queries)
	if err != nil {
		f.Close()
		return fmt.Errorf("write feature file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close feature file: %w", err)
	}
	logger.Debug("Wrote %d feature rows", n)
	return nil
}
