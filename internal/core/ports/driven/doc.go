// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - CorpusSource: Reads the privacy pattern corpus
//   - EmbeddingService: Encodes text into one embedding space (one per space)
//   - EmbeddingCache: Persists pattern-side embeddings keyed by corpus fingerprint
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - Ranker: External learning-to-rank process. Without it, feature files can
//     still be produced but recommendations cannot be computed.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
