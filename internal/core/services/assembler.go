package services

import (
	"fmt"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/lexical"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// FeatureAssembler combines the lexical, TF-IDF, BM25 and semantic engines
// into one 26-element vector per (query, pattern).
type FeatureAssembler struct {
	index    domain.CorpusIndex
	texts    []string
	tokens   [][]string
	analyzer *lexical.Analyzer
	tfidf    *TFIDFEngine
	bm25     *BM25Scorer
	semantic *SemanticEngine
}

// NewFeatureAssembler wires the engines. Every engine must be aligned with index.
func NewFeatureAssembler(
	corpus *domain.Corpus,
	index domain.CorpusIndex,
	analyzer *lexical.Analyzer,
	tfidf *TFIDFEngine,
	bm25 *BM25Scorer,
	semantic *SemanticEngine,
) (*FeatureAssembler, error) {
	if !index.Equal(corpus.Index()) || !index.Equal(tfidf.Index()) || !index.Equal(semantic.Index()) {
		return nil, fmt.Errorf("%w: assembler components disagree on the corpus index", domain.ErrIndexMismatch)
	}
	if bm25.tfidf != tfidf {
		return nil, fmt.Errorf("%w: bm25 scorer built on a different tf-idf engine", domain.ErrIndexMismatch)
	}

	texts := corpus.Facet(domain.FacetFullText)
	tokens := make([][]string, len(texts))
	for i, t := range texts {
		tokens[i] = analyzer.PatternTokens(t)
	}
	return &FeatureAssembler{
		index:    append(domain.CorpusIndex(nil), index...),
		texts:    texts,
		tokens:   tokens,
		analyzer: analyzer,
		tfidf:    tfidf,
		bm25:     bm25,
		semantic: semantic,
	}, nil
}

// Index returns the corpus index of the produced rows.
func (a *FeatureAssembler) Index() domain.CorpusIndex {
	return a.index
}

// ConstructFeatures returns one feature vector per pattern, in corpus order,
// for query. The query's StoryKey selects its row in batch.
func (a *FeatureAssembler) ConstructFeatures(query domain.Query, batch *QueryEmbeddingBatch) ([]domain.FeatureVector, error) {
	if batch == nil {
		return nil, fmt.Errorf("%w: no query embeddings", domain.ErrInvalidInput)
	}
	if !batch.Index().Equal(a.index) {
		return nil, fmt.Errorf("%w: query batch scored against another corpus", domain.ErrIndexMismatch)
	}
	if query.StoryKey < 0 || query.StoryKey >= batch.Len() {
		return nil, fmt.Errorf("%w: key %d, batch of %d", domain.ErrStoryKeyOutOfRange, query.StoryKey, batch.Len())
	}

	lexicalRows := a.LexicalFeatures(query.Text)
	for i := range lexicalRows {
		sims, err := batch.Similarity(query.StoryKey, i)
		if err != nil {
			return nil, err
		}
		copy(lexicalRows[i][domain.FeatCosFullTextA:], sims[:])
	}
	return lexicalRows, nil
}

// LexicalFeatures returns vectors with features 1-20 filled and the semantic
// block left at zero.
func (a *FeatureAssembler) LexicalFeatures(text string) []domain.FeatureVector {
	qWords := a.analyzer.QueryTokens(text)
	if len(qWords) == 0 {
		logger.Warn("Query %q has no content words; lexical overlap features are zero", text)
	}

	qLen := float64(a.analyzer.QueryLength(text))
	qIDF := lexical.GlobalIDF(qWords, a.texts)
	tfidf := a.tfidf.Features(text).Values()
	bm25 := a.bm25.Scores(text)

	rows := make([]domain.FeatureVector, len(a.texts))
	for i, pattern := range a.texts {
		v := &rows[i]

		n, ratio := lexical.CoveredWords(qWords, pattern)
		v[domain.FeatCoveredCount] = float64(n)
		v[domain.FeatCoveredRatio] = ratio
		v[domain.FeatQueryLength] = qLen
		v[domain.FeatQueryIDF] = qIDF

		tf := a.analyzer.TF(qWords, a.tokens[i])
		copy(v[domain.FeatTFSum:domain.FeatTFIDFSum], tf[:])
		copy(v[domain.FeatTFIDFSum:domain.FeatBM25], tfidf[:])
		v[domain.FeatBM25] = bm25[i]
	}
	return rows
}
