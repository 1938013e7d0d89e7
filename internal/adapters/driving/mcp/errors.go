// Package mcp provides an MCP (Model Context Protocol) server adapter for ppltr.
// It lets AI assistants rank privacy patterns for requirements and read
// pattern descriptions.
package mcp

import "errors"

var (
	// ErrMissingFeatureService is returned when the feature service is not provided.
	ErrMissingFeatureService = errors.New("mcp: feature service is required")

	// ErrMissingPatternService is returned when the pattern service is not provided.
	ErrMissingPatternService = errors.New("mcp: pattern service is required")
)
