package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

func newTestTFIDF(t *testing.T, docs ...string) *TFIDFEngine {
	t.Helper()
	index := make(domain.CorpusIndex, len(docs))
	for i := range docs {
		index[i] = string(rune('a' + i))
	}
	e, err := NewTFIDFEngine(index, docs)
	require.NoError(t, err)
	return e
}

func TestTFIDF_Vocabulary(t *testing.T) {
	e := newTestTFIDF(t, "Alpha beta beta, x", "beta gamma")
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, e.Vocabulary())

	idf, ok := e.IDF("alpha")
	require.True(t, ok)
	assert.InDelta(t, math.Log(2)+1, idf, 1e-12)

	idf, ok = e.IDF("beta")
	require.True(t, ok)
	assert.InDelta(t, 1.0, idf, 1e-12)

	_, ok = e.IDF("x")
	assert.False(t, ok, "single-character tokens are not terms")
}

func TestTFIDF_Features(t *testing.T) {
	e := newTestTFIDF(t, "alpha beta beta", "beta gamma")

	s := e.Features("beta ALPHA alpha zeta")
	assert.InDelta(t, 4.386294361119891, s.Sum, 1e-12)
	assert.InDelta(t, 1.0, s.Min, 1e-12)
	assert.InDelta(t, 3.386294361119891, s.Max, 1e-12)
	assert.InDelta(t, 2.1931471805599454, s.Mean, 1e-12)
	assert.InDelta(t, 1.423600194478147, s.Var, 1e-12)
}

func TestTFIDF_FeaturesNoVocabulary(t *testing.T) {
	e := newTestTFIDF(t, "alpha beta", "gamma")
	assert.Equal(t, [5]float64{}, e.Features("zeta eta").Values())
	assert.Equal(t, [5]float64{}, e.Features("").Values())
}

func TestTFIDF_IndexMismatch(t *testing.T) {
	_, err := NewTFIDFEngine(domain.CorpusIndex{"a"}, []string{"x", "y"})
	assert.ErrorIs(t, err, domain.ErrIndexMismatch)
}

func TestTFIDF_DocumentCounts(t *testing.T) {
	e := newTestTFIDF(t, "alpha beta beta", "beta gamma")
	beta := 1
	assert.Equal(t, 2, e.DocumentCounts(0)[beta])
	assert.Equal(t, 1, e.DocumentCounts(1)[beta])
	assert.Equal(t, map[int]int{0: 1}, e.Counts("alpha unknown"))
}
