package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/custodia-labs/ppltr/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/core/services"
)

// mockFeatureService writes one fake row per query.
type mockFeatureService struct {
	queries []domain.Query
	err     error
}

func (m *mockFeatureService) Build(_ context.Context, queries []domain.Query) ([]domain.FeatureRow, error) {
	m.queries = queries
	return nil, m.err
}

func (m *mockFeatureService) Write(_ context.Context, w io.Writer, queries []domain.Query) (int, error) {
	m.queries = queries
	if m.err != nil {
		return 0, m.err
	}
	for _, q := range queries {
		fmt.Fprintf(w, "1 qid:%s 1:0 #docid=a.md\n", q.QID())
	}
	return len(queries), nil
}

type mockRecommendService struct {
	queries []domain.Query
	topK    int
	err     error
}

func (m *mockRecommendService) Recommend(
	_ context.Context,
	queries []domain.Query,
	topK int,
) ([]domain.Recommendation, error) {
	m.queries = queries
	m.topK = topK
	if m.err != nil {
		return nil, m.err
	}
	recs := make([]domain.Recommendation, len(queries))
	for i, q := range queries {
		recs[i] = domain.Recommendation{
			QID:    q.QID(),
			DocIDs: []string{"data-minimization.md"},
			Patterns: []domain.PatternRecord{
				{Filename: "data-minimization.md", Excerpt: "Collect only what is needed."},
			},
		}
	}
	return recs, nil
}

type mockPatternService struct{}

func (mockPatternService) Get(id string) (*domain.PatternRecord, error) {
	if id != "data-minimization" {
		return nil, domain.ErrNotFound
	}
	return &domain.PatternRecord{
		Filename: "data-minimization.md",
		Excerpt:  "Collect only what is needed.",
		Type:     "Minimize",
		Headings: []domain.Heading{{Title: "Solution", Content: "Drop fields."}},
	}, nil
}

func (mockPatternService) List() []domain.Pattern {
	return []domain.Pattern{
		{ID: "data-minimization", Title: "data minimization"},
		{ID: "location-granularity", Title: "location granularity"},
	}
}

type mockCacheService struct {
	warmed   bool
	purgeAll bool
	entries  []driven.EmbeddingKey
	err      error
}

func (m *mockCacheService) Warm(_ context.Context) error {
	m.warmed = true
	return m.err
}

func (m *mockCacheService) Fingerprint() string { return "abcdef0123456789" }

func (m *mockCacheService) Entries(_ context.Context) ([]driven.EmbeddingKey, error) {
	return m.entries, m.err
}

func (m *mockCacheService) PurgeStale(_ context.Context, all bool) (int, error) {
	m.purgeAll = all
	return 2, m.err
}

// setupTestServices installs mocks for every service and returns a cleanup
// function restoring the previous services and flags.
func setupTestServices() (cleanup func()) {
	oldSettings, oldReqs := settingsService, requirementService
	oldFeatures, oldPatterns := featureService, patternService
	oldRecommend, oldCache := recommendService, cacheService

	settings := services.NewSettingsService(memory.NewConfigStore())
	settings.SetEnvFunc(func(string) string { return "" })
	settingsService = settings
	requirementService = services.NewRequirementService()
	featureService = &mockFeatureService{}
	patternService = mockPatternService{}
	recommendService = &mockRecommendService{}
	cacheService = &mockCacheService{}

	return func() {
		settingsService, requirementService = oldSettings, oldReqs
		featureService, patternService = oldFeatures, oldPatterns
		recommendService, cacheService = oldRecommend, oldCache
		resetFlags()
	}
}

func resetFlags() {
	featuresFile, featuresOutput, featuresGroup = "", "", false
	rankFile, rankTopK, rankJSON, rankGroup, keepFiles = "", 0, false, false, false
	topK = services.DefaultTopK
	cachePurgeAll = false
	patternJSON = false
	reqRole, reqProcessing, reqData = "", "", ""
	reqJSON, reqRank, reqTopK = false, false, 0
}

// execute runs the root command with args and returns its output.
func execute(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}

// executeWithInput runs the root command with in as stdin.
func executeWithInput(in string, args ...string) (string, error) {
	rootCmd.SetIn(strings.NewReader(in))
	defer rootCmd.SetIn(nil)
	return execute(args...)
}
