package services

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

// Default BM25 parameters.
const (
	DefaultBM25B  = 0.75
	DefaultBM25K1 = 1.6
)

// BM25Scorer scores the corpus against a query using the TF-IDF engine's
// document-term counts.
type BM25Scorer struct {
	tfidf   *TFIDFEngine
	b       float64
	k1      float64
	lengths []float64
	avdl    float64
}

// NewBM25Scorer precomputes pattern lengths (sum of vocabulary term counts)
// and the average length. index must match the one tfidf was fitted on.
func NewBM25Scorer(index domain.CorpusIndex, tfidf *TFIDFEngine, b, k1 float64) (*BM25Scorer, error) {
	if !index.Equal(tfidf.Index()) {
		return nil, fmt.Errorf("%w: bm25 index of %d patterns does not match tf-idf index of %d",
			domain.ErrIndexMismatch, index.Len(), tfidf.Index().Len())
	}

	s := &BM25Scorer{
		tfidf:   tfidf,
		b:       b,
		k1:      k1,
		lengths: make([]float64, index.Len()),
	}
	for i := range s.lengths {
		for _, c := range tfidf.DocumentCounts(i) {
			s.lengths[i] += float64(c)
		}
	}
	if len(s.lengths) > 0 {
		s.avdl = stat.Mean(s.lengths, nil)
	}
	return s, nil
}

// AverageLength returns the mean pattern length.
func (s *BM25Scorer) AverageLength() float64 {
	return s.avdl
}

// Scores returns one BM25 score per pattern in corpus order. Each distinct
// vocabulary term of the query contributes once, weighted by ln(N/df).
// A query sharing no term with the vocabulary scores 0 everywhere.
func (s *BM25Scorer) Scores(query string) []float64 {
	scores := make([]float64, len(s.lengths))

	counts := s.tfidf.Counts(query)
	terms := make([]int, 0, len(counts))
	for t := range counts {
		terms = append(terms, t)
	}
	sort.Ints(terms)

	for d := range scores {
		norm := 1 - s.b
		if s.avdl != 0 {
			norm += s.b * s.lengths[d] / s.avdl
		}
		docCounts := s.tfidf.DocumentCounts(d)
		for _, t := range terms {
			tf := float64(docCounts[t])
			if tf == 0 {
				continue
			}
			idf := s.tfidf.idf[t] - 1
			scores[d] += idf * tf * (s.k1 + 1) / (tf + s.k1*norm)
		}
	}
	return scores
}
