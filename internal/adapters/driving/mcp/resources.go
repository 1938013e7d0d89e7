package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ppltr resources.
	uriScheme = "ppltr://"

	patternsPath = "patterns"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + patternsPath,
		Name:        "patterns",
		Description: "The privacy design patterns in corpus order",
		MIMEType:    "application/json",
	}, s.handlePatternsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + patternsPath + "/{patternId}",
		Name:        "pattern",
		Description: "Full description of a privacy design pattern",
		MIMEType:    "application/json",
	}, s.handlePatternResource)
}

// handlePatternsResource lists every pattern.
func (s *Server) handlePatternsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	patterns := s.ports.Patterns.List()

	infos := make([]PatternOutput, len(patterns))
	for i, p := range patterns {
		infos[i] = PatternOutput{
			ID:      p.ID,
			Title:   p.Title,
			Excerpt: p.Excerpt,
			URI:     patternURI(p.ID),
		}
	}
	return jsonResult(req.Params.URI, infos)
}

// handlePatternResource returns the corpus record of one pattern.
func (s *Server) handlePatternResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractPatternID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.Patterns.Get(id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting pattern: %w", err)
	}
	return jsonResult(req.Params.URI, record)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func patternURI(id string) string {
	return uriScheme + patternsPath + "/" + id
}

// extractPatternID extracts the pattern ID from a URI like ppltr://patterns/{patternId}.
func extractPatternID(uri string) string {
	const prefix = uriScheme + patternsPath + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
