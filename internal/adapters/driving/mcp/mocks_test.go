package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

// mockFeatureService is a mock implementation of driving.FeatureService.
type mockFeatureService struct {
	rows    []domain.FeatureRow
	err     error
	queries []domain.Query
}

func (m *mockFeatureService) Build(_ context.Context, queries []domain.Query) ([]domain.FeatureRow, error) {
	m.queries = queries
	return m.rows, m.err
}

func (m *mockFeatureService) Write(_ context.Context, _ io.Writer, _ []domain.Query) (int, error) {
	return len(m.rows), m.err
}

// mockPatternService is a mock implementation of driving.PatternService.
type mockPatternService struct {
	records  map[string]domain.PatternRecord
	patterns []domain.Pattern
	err      error
}

func (m *mockPatternService) Get(id string) (*domain.PatternRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	r, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &r, nil
}

func (m *mockPatternService) List() []domain.Pattern {
	return m.patterns
}

// mockRecommendService is a mock implementation of driving.RecommendService.
type mockRecommendService struct {
	recs    []domain.Recommendation
	err     error
	queries []domain.Query
	topK    int
}

func (m *mockRecommendService) Recommend(
	_ context.Context,
	queries []domain.Query,
	topK int,
) ([]domain.Recommendation, error) {
	m.queries = queries
	m.topK = topK
	return m.recs, m.err
}

// mockRequirementService is a mock implementation of driving.RequirementService.
type mockRequirementService struct {
	reqs []domain.Requirement
	err  error
}

func (m *mockRequirementService) Generate(_ domain.DataFlowTriple) ([]domain.Requirement, error) {
	return m.reqs, m.err
}

func newPatternMock() *mockPatternService {
	rec := domain.PatternRecord{Filename: "data-minimization.md", Excerpt: "Collect less."}
	return &mockPatternService{
		records: map[string]domain.PatternRecord{"data-minimization": rec},
		patterns: []domain.Pattern{
			{ID: "data-minimization", Title: "data minimization", Excerpt: "Collect less."},
		},
	}
}
