package driven

import "context"

// EmbeddingService generates vector embeddings from text in one embedding space.
// The feature engine holds two of these, one per domain.EmbeddingSpace.
//
// Implementations may include:
//   - ONNX sentence-transformers (all-MiniLM-L6-v2, stackoverflow_mpnet-base)
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small)
//   - Feature hashing (offline, deterministic)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	// It is part of the embedding cache key.
	ModelName() string

	// Ping validates the service is usable before committing to a corpus precompute.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
