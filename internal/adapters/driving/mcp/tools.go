package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

// defaultTopK is used when the caller does not ask for a count.
const defaultTopK = 5

// RecommendInput is the input schema for the recommend_patterns tool.
type RecommendInput struct {
	Requirements []string `json:"requirements" jsonschema:"privacy requirement texts to find patterns for"`
	TopK         int      `json:"top_k,omitempty" jsonschema:"patterns per requirement (default 5)"`
	Group        bool     `json:"group,omitempty" jsonschema:"treat the requirements as derived from a group of stories"`
}

// RecommendOutput is the output schema for the recommend_patterns tool.
type RecommendOutput struct {
	Recommendations []RecommendationOutput `json:"recommendations"`
}

// RecommendationOutput holds the ranked patterns for one requirement.
type RecommendationOutput struct {
	QID         string          `json:"qid"`
	Requirement string          `json:"requirement"`
	Patterns    []PatternOutput `json:"patterns"`
}

// PatternOutput summarizes one pattern.
type PatternOutput struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	URI     string `json:"uri"`
}

// FeaturesInput is the input schema for the pattern_features tool.
type FeaturesInput struct {
	Requirement string `json:"requirement" jsonschema:"the requirement text to compute features for"`
}

// FeaturesOutput is the output schema for the pattern_features tool.
type FeaturesOutput struct {
	Rows []FeatureRowOutput `json:"rows"`
}

// FeatureRowOutput is the feature vector of one pattern.
type FeatureRowOutput struct {
	PatternID string    `json:"pattern_id"`
	DocID     string    `json:"doc_id"`
	Features  []float64 `json:"features"`
}

// RequirementsInput is the input schema for the generate_requirements tool.
type RequirementsInput struct {
	Role         string `json:"role" jsonschema:"the external entity acting on the data"`
	Processing   string `json:"processing" jsonschema:"the processing applied to the data"`
	PersonalData string `json:"personal_data" jsonschema:"the personal data concerned"`
}

// RequirementsOutput is the output schema for the generate_requirements tool.
type RequirementsOutput struct {
	Requirements []RequirementOutput `json:"requirements"`
}

// RequirementOutput is one generated requirement.
type RequirementOutput struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recommend_patterns",
		Description: "Rank privacy design patterns for privacy requirements",
	}, s.handleRecommend)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "pattern_features",
		Description: "Compute the 26 learning-to-rank features of a requirement against every pattern",
	}, s.handleFeatures)

	if s.ports.Requirements != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "generate_requirements",
			Description: "Generate privacy requirements for a (role, processing, personal data) flow",
		}, s.handleRequirements)
	}
}

// handleRecommend handles the recommend_patterns tool invocation.
func (s *Server) handleRecommend(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecommendInput,
) (*mcp.CallToolResult, RecommendOutput, error) {
	if s.ports.Recommend == nil {
		return nil, RecommendOutput{}, domain.ErrRankerUnavailable
	}
	if len(input.Requirements) == 0 {
		return nil, RecommendOutput{}, errors.New("at least one requirement is required")
	}
	topK := input.TopK
	if topK <= 0 {
		topK = defaultTopK
	}
	kind := domain.QueryKindIndividual
	if input.Group {
		kind = domain.QueryKindGroup
	}

	queries, err := domain.NewQueryBatch(input.Requirements, nil, kind)
	if err != nil {
		return nil, RecommendOutput{}, err
	}
	recs, err := s.ports.Recommend.Recommend(ctx, queries, topK)
	if err != nil {
		return nil, RecommendOutput{}, err
	}

	texts := make(map[string]string, len(queries))
	for _, q := range queries {
		texts[q.QID()] = q.Text
	}

	output := RecommendOutput{Recommendations: make([]RecommendationOutput, len(recs))}
	for i, rec := range recs {
		out := RecommendationOutput{
			QID:         rec.QID,
			Requirement: texts[rec.QID],
			Patterns:    make([]PatternOutput, len(rec.Patterns)),
		}
		for j, p := range rec.Patterns {
			out.Patterns[j] = patternOutput(p)
		}
		output.Recommendations[i] = out
	}
	return nil, output, nil
}

// handleFeatures handles the pattern_features tool invocation.
func (s *Server) handleFeatures(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FeaturesInput,
) (*mcp.CallToolResult, FeaturesOutput, error) {
	query := domain.Query{Text: input.Requirement, ID: "1", Kind: domain.QueryKindIndividual}
	rows, err := s.ports.Features.Build(ctx, []domain.Query{query})
	if err != nil {
		return nil, FeaturesOutput{}, fmt.Errorf("building features: %w", err)
	}

	output := FeaturesOutput{Rows: make([]FeatureRowOutput, len(rows))}
	for i, r := range rows {
		output.Rows[i] = FeatureRowOutput{
			PatternID: r.PatternID,
			DocID:     r.DocID,
			Features:  append([]float64(nil), r.Features[:]...),
		}
	}
	return nil, output, nil
}

// handleRequirements handles the generate_requirements tool invocation.
func (s *Server) handleRequirements(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RequirementsInput,
) (*mcp.CallToolResult, RequirementsOutput, error) {
	reqs, err := s.ports.Requirements.Generate(domain.DataFlowTriple{
		Role:         input.Role,
		Processing:   input.Processing,
		PersonalData: input.PersonalData,
	})
	if err != nil {
		return nil, RequirementsOutput{}, err
	}

	output := RequirementsOutput{Requirements: make([]RequirementOutput, len(reqs))}
	for i, r := range reqs {
		output.Requirements[i] = RequirementOutput{Type: string(r.Type), Text: r.Text}
	}
	return nil, output, nil
}

func patternOutput(r domain.PatternRecord) PatternOutput {
	return PatternOutput{
		ID:      r.Slug(),
		Title:   r.HumanizedName(),
		Excerpt: r.Excerpt,
		URI:     patternURI(r.Slug()),
	}
}
