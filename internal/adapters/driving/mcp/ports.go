package mcp

import (
	"github.com/custodia-labs/ppltr/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Features builds feature rows.
	Features driving.FeatureService

	// Patterns looks up corpus entries.
	Patterns driving.PatternService

	// Recommend ranks patterns. Optional: without it recommend_patterns fails.
	Recommend driving.RecommendService

	// Requirements generates requirement texts. Optional.
	Requirements driving.RequirementService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Features == nil {
		return ErrMissingFeatureService
	}
	if p.Patterns == nil {
		return ErrMissingPatternService
	}
	return nil
}
