package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/lexical"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// EngineConfig configures NewEngine.
type EngineConfig struct {
	// Policy is the lexical tokenization policy.
	Policy lexical.Policy

	// B and K1 are the BM25 parameters.
	B  float64
	K1 float64

	// Encoders embed text in the two spaces.
	Encoders Encoders

	// Cache persists pattern embeddings. Optional.
	Cache driven.EmbeddingCache

	// MemoSize bounds the query embedding memo. Zero uses the default.
	MemoSize int
}

// DefaultEngineConfig returns the standard policy and BM25 parameters.
func DefaultEngineConfig(encoders Encoders, cache driven.EmbeddingCache) EngineConfig {
	return EngineConfig{
		Policy:   lexical.DefaultPolicy(),
		B:        DefaultBM25B,
		K1:       DefaultBM25K1,
		Encoders: encoders,
		Cache:    cache,
	}
}

// Engine is the fully built, read-only feature engine for one corpus.
// A changed corpus needs a new Engine.
type Engine struct {
	Corpus    *domain.Corpus
	Index     domain.CorpusIndex
	TFIDF     *TFIDFEngine
	BM25      *BM25Scorer
	Semantic  *SemanticEngine
	Assembler *FeatureAssembler
}

// NewEngine builds every component over corpus, threading one corpus index
// through all of them.
func NewEngine(ctx context.Context, corpus *domain.Corpus, cfg EngineConfig) (*Engine, error) {
	logger.Section("Feature Engine")
	index := corpus.Index()

	tfidf, err := NewTFIDFEngine(index, corpus.Facet(domain.FacetFullText))
	if err != nil {
		return nil, fmt.Errorf("build tf-idf: %w", err)
	}
	logger.Debug("Vocabulary: %d terms", len(tfidf.terms))

	bm25, err := NewBM25Scorer(index, tfidf, cfg.B, cfg.K1)
	if err != nil {
		return nil, fmt.Errorf("build bm25: %w", err)
	}
	logger.Debug("BM25 b=%g k1=%g avdl=%.2f", cfg.B, cfg.K1, bm25.AverageLength())

	semantic, err := NewSemanticEngine(ctx, corpus, index, cfg.Encoders, SemanticOptions{
		Cache:    cfg.Cache,
		MemoSize: cfg.MemoSize,
	})
	if err != nil {
		return nil, fmt.Errorf("build semantic engine: %w", err)
	}

	assembler, err := NewFeatureAssembler(corpus, index, lexical.NewAnalyzer(cfg.Policy), tfidf, bm25, semantic)
	if err != nil {
		return nil, fmt.Errorf("build assembler: %w", err)
	}

	logger.Info("Feature engine ready: %d patterns", corpus.Len())
	return &Engine{
		Corpus:    corpus,
		Index:     index,
		TFIDF:     tfidf,
		BM25:      bm25,
		Semantic:  semantic,
		Assembler: assembler,
	}, nil
}
