package services

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ppltr/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEncoder implements driven.EmbeddingService with a deterministic
// bag-of-words embedding.
type mockEncoder struct {
	name  string
	dims  int
	err   error
	zero  bool
	calls atomic.Int64
	texts atomic.Int64
}

func newMockEncoder(name string, dims int) *mockEncoder {
	return &mockEncoder{name: name, dims: dims}
}

func (m *mockEncoder) embed(text string) []float32 {
	v := make([]float32, m.dims)
	if m.zero {
		return v
	}
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(strings.Trim(w, ".,!?")))
		v[int(h.Sum32())%m.dims]++
	}
	return v
}

func (m *mockEncoder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.embed(text), nil
}

func (m *mockEncoder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls.Add(1)
	m.texts.Add(int64(len(texts)))
	if m.err != nil {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.embed(t)
	}
	return out, nil
}

func (m *mockEncoder) Dimensions() int              { return m.dims }
func (m *mockEncoder) ModelName() string            { return m.name }
func (m *mockEncoder) Ping(_ context.Context) error { return m.err }
func (m *mockEncoder) Close() error                 { return nil }

// mockCorpusSource implements driven.CorpusSource.
type mockCorpusSource struct {
	records []domain.PatternRecord
	err     error
}

func (m *mockCorpusSource) Load(_ context.Context) ([]domain.PatternRecord, error) {
	return m.records, m.err
}

func (m *mockCorpusSource) Location() string { return "mock://patterns.json" }

// failingCache implements driven.EmbeddingCache and fails every call.
type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) Load(context.Context, driven.EmbeddingKey) ([][]float32, error) {
	return nil, errCacheDown
}
func (failingCache) Save(context.Context, driven.EmbeddingKey, [][]float32) error { return errCacheDown }
func (failingCache) Keys(context.Context) ([]driven.EmbeddingKey, error)         { return nil, errCacheDown }
func (failingCache) Purge(context.Context, string) (int, error)                  { return 0, errCacheDown }
func (failingCache) Close() error                                                { return nil }

// --- Fixtures ---

func testRecords() []domain.PatternRecord {
	return []domain.PatternRecord{
		{
			Filename: "data-minimization.md",
			Excerpt:  "Collect and store only the personal data that is strictly needed.",
			Headings: []domain.Heading{
				{Title: "Context", Content: "Systems tend to collect more data than they use."},
				{Title: "Solution", Content: "Limit collection of personal data to the minimum"},
			},
		},
		{
			Filename: "informed-consent.md",
			Excerpt:  "Ask users for consent before processing their data",
			Headings: []domain.Heading{
				{Title: "Solution", Content: "Present a clear consent dialog and record the answer."},
			},
		},
		{
			Filename: "location-granularity.md",
			Excerpt:  "Reduce the precision of location data shared with services.",
			Headings: []domain.Heading{
				{Title: "Solution", Content: "Round coordinates to a coarse grid before sharing location."},
			},
		},
	}
}

type testEnv struct {
	engine    *Engine
	features  *FeatureService
	general   *mockEncoder
	technical *mockEncoder
	cache     *memory.EmbeddingCache
}

func newTestEnv(t *testing.T, records []domain.PatternRecord) *testEnv {
	t.Helper()
	env := &testEnv{
		general:   newMockEncoder("general-test", 16),
		technical: newMockEncoder("technical-test", 24),
		cache:     memory.NewEmbeddingCache(),
	}
	corpus, err := BuildCorpus(records, CorpusOptions{})
	require.NoError(t, err)

	env.engine, err = NewEngine(context.Background(), corpus,
		DefaultEngineConfig(Encoders{General: env.general, Technical: env.technical}, env.cache))
	require.NoError(t, err)
	env.features = NewFeatureService(env.engine)
	return env
}

func (e *testEnv) encoders() Encoders {
	return Encoders{General: e.general, Technical: e.technical}
}

func mustQueries(t *testing.T, kind domain.QueryKind, texts ...string) []domain.Query {
	t.Helper()
	q, err := domain.NewQueryBatch(texts, nil, kind)
	require.NoError(t, err)
	return q
}

// concurrently runs fn n times in parallel and waits.
func concurrently(n int, fn func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(i)
		}()
	}
	wg.Wait()
}
