package services

import (
	"fmt"
	"math"
	"sort"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/lexical"
)

// TFIDFEngine holds the vocabulary, inverse document frequencies and the
// document-term counts of the full-text facet.
//
// idf(t) = ln(N / df(t)) + 1, with no smoothing and no vector normalisation.
type TFIDFEngine struct {
	index  domain.CorpusIndex
	vocab  map[string]int
	terms  []string
	idf    []float64
	counts []map[int]int
}

// NewTFIDFEngine fits the vocabulary over docs, which must be aligned with index.
func NewTFIDFEngine(index domain.CorpusIndex, docs []string) (*TFIDFEngine, error) {
	if index.Len() != len(docs) {
		return nil, fmt.Errorf("%w: tf-idf index has %d patterns, got %d documents",
			domain.ErrIndexMismatch, index.Len(), len(docs))
	}

	df := make(map[string]int)
	docTerms := make([][]string, len(docs))
	for i, d := range docs {
		docTerms[i] = lexical.Terms(d)
		seen := make(map[string]struct{}, len(docTerms[i]))
		for _, t := range docTerms[i] {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	terms := make([]string, 0, len(df))
	for t := range df {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	e := &TFIDFEngine{
		index:  append(domain.CorpusIndex(nil), index...),
		vocab:  make(map[string]int, len(terms)),
		terms:  terms,
		idf:    make([]float64, len(terms)),
		counts: make([]map[int]int, len(docs)),
	}
	n := float64(len(docs))
	for i, t := range terms {
		e.vocab[t] = i
		e.idf[i] = math.Log(n/float64(df[t])) + 1
	}
	for i, toks := range docTerms {
		e.counts[i] = e.countTerms(toks)
	}
	return e, nil
}

// Index returns the corpus index the engine was fitted on.
func (e *TFIDFEngine) Index() domain.CorpusIndex {
	return e.index
}

// Vocabulary returns the fitted terms in sorted order.
func (e *TFIDFEngine) Vocabulary() []string {
	return append([]string(nil), e.terms...)
}

// IDF returns the inverse document frequency of term.
func (e *TFIDFEngine) IDF(term string) (float64, bool) {
	i, ok := e.vocab[term]
	if !ok {
		return 0, false
	}
	return e.idf[i], true
}

// DocumentCounts returns the vocabulary term counts of pattern i, keyed by
// term position.
func (e *TFIDFEngine) DocumentCounts(i int) map[int]int {
	return e.counts[i]
}

// Counts returns the vocabulary term counts of text, keyed by term position.
// Out-of-vocabulary terms are ignored.
func (e *TFIDFEngine) Counts(text string) map[int]int {
	return e.countTerms(lexical.Terms(text))
}

// Weights projects text onto the vocabulary: raw count times idf per term.
func (e *TFIDFEngine) Weights(text string) map[int]float64 {
	counts := e.Counts(text)
	w := make(map[int]float64, len(counts))
	for i, c := range counts {
		w[i] = float64(c) * e.idf[i]
	}
	return w
}

// Features returns the sum, min, max, mean and population variance of the
// query's non-zero TF-IDF weights. A query with no vocabulary term yields zeros.
func (e *TFIDFEngine) Features(query string) lexical.Summary {
	w := e.Weights(query)
	keys := make([]int, 0, len(w))
	for i := range w {
		keys = append(keys, i)
	}
	sort.Ints(keys)

	values := make([]float64, 0, len(keys))
	for _, i := range keys {
		if w[i] != 0 {
			values = append(values, w[i])
		}
	}
	return lexical.Aggregate(values)
}

func (e *TFIDFEngine) countTerms(terms []string) map[int]int {
	counts := make(map[int]int)
	for _, t := range terms {
		if i, ok := e.vocab[t]; ok {
			counts[i]++
		}
	}
	return counts
}
