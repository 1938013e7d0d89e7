// Package domain defines the core business entities for ppltr.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - PatternRecord: A raw privacy design pattern as read from the corpus file
//   - Pattern: The three text facets derived from a record
//   - Corpus / CorpusIndex: The ordered pattern collection every engine is aligned to
//   - Query: A privacy requirement matched against the corpus
//   - FeatureVector / FeatureRow: The learning-to-rank features per (query, pattern)
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
