package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viterin/vek/vek32"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// SimilarityCount is the number of semantic features per (query, pattern):
// three facets in each of two embedding spaces.
const SimilarityCount = 6

// defaultMemoSize bounds the query embedding memo per engine.
const defaultMemoSize = 4096

// Encoders holds one embedding service per space.
type Encoders struct {
	General   driven.EmbeddingService
	Technical driven.EmbeddingService
}

// For returns the encoder of a space.
func (e Encoders) For(space domain.EmbeddingSpace) driven.EmbeddingService {
	if space == domain.SpaceTechnical {
		return e.Technical
	}
	return e.General
}

type spaceFacet struct {
	space domain.EmbeddingSpace
	facet domain.Facet
}

// similaritySlots lists the (space, facet) pairs in feature order.
var similaritySlots = func() [SimilarityCount]spaceFacet {
	var slots [SimilarityCount]spaceFacet
	i := 0
	for _, s := range domain.AllSpaces() {
		for _, f := range domain.AllFacets() {
			slots[i] = spaceFacet{space: s, facet: f}
			i++
		}
	}
	return slots
}()

type memoKey struct {
	space domain.EmbeddingSpace
	text  string
}

// SemanticEngine holds the unit-normalised pattern embeddings of every facet
// in both spaces. It is read-only after construction; per-batch state lives in
// QueryEmbeddingBatch values.
type SemanticEngine struct {
	index    domain.CorpusIndex
	encoders Encoders
	patterns map[spaceFacet]*mat.Dense
	memo     *lru.Cache[memoKey, []float32]
}

// SemanticOptions configures NewSemanticEngine.
type SemanticOptions struct {
	// Cache persists pattern embeddings. Nil disables persistence.
	Cache driven.EmbeddingCache

	// MemoSize bounds the query embedding memo. Zero uses the default.
	MemoSize int
}

// NewSemanticEngine loads the pattern embeddings of corpus from the cache, or
// encodes and saves them when the primary entry (general space, full text) is
// missing. index must match the corpus.
func NewSemanticEngine(
	ctx context.Context,
	corpus *domain.Corpus,
	index domain.CorpusIndex,
	encoders Encoders,
	opts SemanticOptions,
) (*SemanticEngine, error) {
	if !index.Equal(corpus.Index()) {
		return nil, fmt.Errorf("%w: semantic index of %d patterns does not match corpus of %d",
			domain.ErrIndexMismatch, index.Len(), corpus.Len())
	}
	for _, space := range domain.AllSpaces() {
		if encoders.For(space) == nil {
			return nil, fmt.Errorf("%w: no encoder for %s space", domain.ErrEmbeddingUnavailable, space)
		}
	}

	size := opts.MemoSize
	if size <= 0 {
		size = defaultMemoSize
	}
	memo, err := lru.New[memoKey, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("create query memo: %w", err)
	}

	e := &SemanticEngine{
		index:    append(domain.CorpusIndex(nil), index...),
		encoders: encoders,
		patterns: make(map[spaceFacet]*mat.Dense, SimilarityCount),
		memo:     memo,
	}

	vectors, err := loadPatternEmbeddings(ctx, corpus, encoders, opts.Cache)
	if err != nil {
		return nil, err
	}
	for slot, v := range vectors {
		e.patterns[slot] = normalizedMatrix(v)
	}
	return e, nil
}

// Index returns the corpus index the engine is aligned with.
func (e *SemanticEngine) Index() domain.CorpusIndex {
	return e.index
}

// EncodeQueries encodes texts in both spaces and returns the six
// (len(texts) x patterns) cosine matrices. Row i corresponds to story key i.
func (e *SemanticEngine) EncodeQueries(ctx context.Context, texts []string) (*QueryEmbeddingBatch, error) {
	batch := &QueryEmbeddingBatch{index: e.index, size: len(texts)}
	if len(texts) == 0 {
		return batch, nil
	}

	var queries [2]*mat.Dense
	g, gctx := errgroup.WithContext(ctx)
	for i, space := range domain.AllSpaces() {
		g.Go(func() error {
			vectors, err := e.encodeSpace(gctx, space, texts)
			if err != nil {
				return err
			}
			queries[i] = normalizedMatrix(vectors)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, slot := range similaritySlots {
		q := queries[i/len(domain.AllFacets())]
		p := e.patterns[slot]
		_, qc := q.Dims()
		_, pc := p.Dims()
		if qc != pc {
			return nil, fmt.Errorf("%w: %s query vectors have %d dimensions, patterns have %d",
				domain.ErrEmbeddingUnavailable, slot.space, qc, pc)
		}
		var scores mat.Dense
		scores.Mul(q, p.T())
		clampUnit(&scores)
		batch.scores[i] = &scores
	}
	return batch, nil
}

// encodeSpace embeds texts in one space, reusing memoised vectors.
func (e *SemanticEngine) encodeSpace(ctx context.Context, space domain.EmbeddingSpace, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	var positions []int
	for i, t := range texts {
		if v, ok := e.memo.Get(memoKey{space: space, text: t}); ok {
			out[i] = v
			continue
		}
		missing = append(missing, t)
		positions = append(positions, i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	logger.Debug("Encoding %d queries in %s space (%d memoised)", len(missing), space, len(texts)-len(missing))
	vectors, err := e.encoders.For(space).EmbedBatch(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("encode queries in %s space: %w", space, err)
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("%w: %s encoder returned %d vectors for %d queries",
			domain.ErrEmbeddingUnavailable, space, len(vectors), len(missing))
	}
	for j, v := range vectors {
		out[positions[j]] = v
		e.memo.Add(memoKey{space: space, text: missing[j]}, v)
	}
	return out, nil
}

// QueryEmbeddingBatch holds the cosine similarities of one encoded batch of
// queries against every pattern facet. It is immutable and safe to share.
type QueryEmbeddingBatch struct {
	index  domain.CorpusIndex
	size   int
	scores [SimilarityCount]*mat.Dense
}

// Len returns the number of queries in the batch.
func (b *QueryEmbeddingBatch) Len() int {
	return b.size
}

// Index returns the corpus index the batch was scored against.
func (b *QueryEmbeddingBatch) Index() domain.CorpusIndex {
	return b.index
}

// Similarity returns the six cosine similarities of query storyKey against
// pattern i, in feature order.
func (b *QueryEmbeddingBatch) Similarity(storyKey, i int) ([SimilarityCount]float64, error) {
	var out [SimilarityCount]float64
	if storyKey < 0 || storyKey >= b.size {
		return out, fmt.Errorf("%w: key %d, batch of %d", domain.ErrStoryKeyOutOfRange, storyKey, b.size)
	}
	if i < 0 || i >= b.index.Len() {
		return out, fmt.Errorf("%w: pattern %d of %d", domain.ErrIndexMismatch, i, b.index.Len())
	}
	for s, m := range b.scores {
		out[s] = m.At(storyKey, i)
	}
	return out, nil
}

// loadPatternEmbeddings returns the raw pattern vectors for every slot.
func loadPatternEmbeddings(
	ctx context.Context,
	corpus *domain.Corpus,
	encoders Encoders,
	cache driven.EmbeddingCache,
) (map[spaceFacet][][]float32, error) {
	fingerprint := corpus.Fingerprint()
	keyOf := func(slot spaceFacet) driven.EmbeddingKey {
		enc := encoders.For(slot.space)
		return driven.EmbeddingKey{
			Fingerprint: fingerprint,
			Space:       slot.space,
			Model:       enc.ModelName(),
			Dimensions:  enc.Dimensions(),
			Facet:       slot.facet,
		}
	}

	vectors := make(map[spaceFacet][][]float32, SimilarityCount)
	if cache != nil {
		primary := similaritySlots[0]
		v, err := loadEntry(ctx, cache, keyOf(primary), corpus.Len())
		switch {
		case err == nil:
			vectors[primary] = v
			for _, slot := range similaritySlots[1:] {
				v, err := loadEntry(ctx, cache, keyOf(slot), corpus.Len())
				if err != nil {
					logger.Debug("Cache entry %s/%s unusable: %v", slot.space, slot.facet, err)
					continue
				}
				vectors[slot] = v
			}
		case errors.Is(err, domain.ErrNotFound):
			logger.Info("Embedding cache miss for corpus %s, encoding patterns", fingerprint[:12])
		default:
			logger.Warn("Embedding cache unusable, encoding patterns: %v", err)
		}
	}

	if len(vectors) == SimilarityCount {
		logger.Debug("Loaded %d pattern embedding matrices from cache", SimilarityCount)
		return vectors, nil
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, slot := range similaritySlots {
		if _, ok := vectors[slot]; ok {
			continue
		}
		g.Go(func() error {
			v, err := encodePatterns(ctx, encoders.For(slot.space), corpus.Facet(slot.facet))
			if err != nil {
				return fmt.Errorf("encode %s patterns in %s space: %w", slot.facet, slot.space, err)
			}
			mu.Lock()
			vectors[slot] = v
			mu.Unlock()
			if cache != nil {
				if err := cache.Save(ctx, keyOf(slot), v); err != nil {
					logger.Warn("Failed to cache %s/%s embeddings: %v", slot.space, slot.facet, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// loadEntry loads one cached matrix. An entry with the wrong number of
// vectors, or vectors of another width than the encoder produces, is
// reported as a miss.
func loadEntry(ctx context.Context, cache driven.EmbeddingCache, key driven.EmbeddingKey, n int) ([][]float32, error) {
	v, err := cache.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(v) != n {
		return nil, fmt.Errorf("%w: cached %d vectors for %d patterns", domain.ErrNotFound, len(v), n)
	}
	for i, vec := range v {
		if len(vec) != key.Dimensions {
			return nil, fmt.Errorf("%w: cached vector %d has %d dimensions, encoder has %d",
				domain.ErrNotFound, i, len(vec), key.Dimensions)
		}
	}
	return v, nil
}

func encodePatterns(ctx context.Context, enc driven.EmbeddingService, texts []string) ([][]float32, error) {
	v, err := enc.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(v) != len(texts) {
		return nil, fmt.Errorf("%w: %d vectors for %d patterns", domain.ErrEmbeddingUnavailable, len(v), len(texts))
	}
	return v, nil
}

// normalizedMatrix stacks vectors as rows scaled to unit length. Zero vectors
// stay zero, so their cosine with anything is 0.
func normalizedMatrix(vectors [][]float32) *mat.Dense {
	dims := 0
	for _, v := range vectors {
		if len(v) > dims {
			dims = len(v)
		}
	}
	if dims == 0 {
		dims = 1
	}
	m := mat.NewDense(max(len(vectors), 1), dims, nil)
	for i, v := range vectors {
		norm := math.Sqrt(float64(vek32.Dot(v, v)))
		if norm == 0 {
			continue
		}
		for j, x := range v {
			m.Set(i, j, float64(x)/norm)
		}
	}
	return m
}

func clampUnit(m *mat.Dense) {
	m.Apply(func(_, _ int, v float64) float64 {
		return math.Max(-1, math.Min(1, v))
	}, m)
}
