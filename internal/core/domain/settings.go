package domain

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the backend that encodes text into an embedding space.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderONNX runs a sentence-transformer locally through ONNX Runtime.
	EmbeddingProviderONNX EmbeddingProvider = "onnx"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI API or a compatible endpoint.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"

	// EmbeddingProviderHashing is a deterministic feature-hashing encoder that
	// needs no model. Useful offline and in tests.
	EmbeddingProviderHashing EmbeddingProvider = "hashing"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderONNX, EmbeddingProviderOllama, EmbeddingProviderOpenAI, EmbeddingProviderHashing:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderONNX:
		return "ONNX sentence-transformer (local)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	case EmbeddingProviderHashing:
		return "Feature hashing (offline)"
	default:
		return unknownDescription
	}
}

// EmbeddingSpace identifies one of the two independent embedding spaces.
type EmbeddingSpace string

// Embedding spaces.
const (
	// SpaceGeneral is the general-purpose sentence space.
	SpaceGeneral EmbeddingSpace = "general"

	// SpaceTechnical is the technical-forum tuned space.
	SpaceTechnical EmbeddingSpace = "technical"
)

// AllSpaces returns the spaces in feature order.
func AllSpaces() []EmbeddingSpace {
	return []EmbeddingSpace{SpaceGeneral, SpaceTechnical}
}

// EmbeddingSettings holds configuration for one embedding space.
type EmbeddingSettings struct {
	// Provider is the embedding backend.
	Provider EmbeddingProvider `default:"onnx" validate:"required,oneof=onnx ollama openai hashing"`

	// Model is the model name; it is part of the cache key.
	Model string

	// Repo is the Hugging Face repository the ONNX provider downloads from.
	Repo string

	// BaseURL is the API endpoint (Ollama, OpenAI-compatible).
	BaseURL string

	// APIKey is the API key (OpenAI).
	APIKey string

	// Dimensions overrides the model dimension when non-zero.
	Dimensions int `validate:"gte=0"`

	// RequestsPerSecond limits HTTP providers. Zero disables limiting.
	RequestsPerSecond float64 `validate:"gte=0"`
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// CorpusSettings locates the pattern corpus.
type CorpusSettings struct {
	// Path is the JSON pattern file.
	Path string `default:"LTR_resources/patterns.json" validate:"required"`

	// StripMarkdown removes inline HTML and markdown syntax from heading content
	// before composing full text.
	StripMarkdown bool
}

// CacheSettings selects where pattern embeddings are persisted.
type CacheSettings struct {
	// Driver is "sqlite" or "memory".
	Driver string `default:"sqlite" validate:"oneof=sqlite memory"`

	// Dir is the data directory for the sqlite driver. Empty means ~/.ppltr/data.
	Dir string
}

// BM25Settings holds the Okapi BM25 parameters.
type BM25Settings struct {
	// B is the length normalisation strength.
	B float64 `default:"0.75" validate:"gte=0,lte=1"`

	// K1 is the term frequency saturation.
	K1 float64 `default:"1.6" validate:"gte=0"`
}

// RankerSettings configures the external learning-to-rank process.
type RankerSettings struct {
	// Java is the Java executable.
	Java string `default:"java" validate:"required"`

	// Jar is the RankLib jar.
	Jar string `default:"RankLib-2.18.jar" validate:"required"`

	// Model is the trained ranking model file.
	Model string `default:"LTR_resources/4_RankBoost.model" validate:"required"`

	// WorkDir receives feature and ranked output files. Empty means the OS temp dir.
	WorkDir string

	// TopK is the default number of recommendations per query.
	TopK int `default:"5" validate:"gte=1"`
}

// Settings holds all application settings.
type Settings struct {
	Corpus    CorpusSettings
	Cache     CacheSettings
	BM25      BM25Settings
	Primary   EmbeddingSettings
	Secondary EmbeddingSettings
	Ranker    RankerSettings
}

// Embedding returns the settings for a space.
func (s Settings) Embedding(space EmbeddingSpace) EmbeddingSettings {
	if space == SpaceTechnical {
		return s.Secondary
	}
	return s.Primary
}

// DefaultEmbeddingModels returns the default model per space for the ONNX provider.
func DefaultEmbeddingModels() map[EmbeddingSpace]string {
	return map[EmbeddingSpace]string{
		SpaceGeneral:   "all-MiniLM-L6-v2",
		SpaceTechnical: "stackoverflow_mpnet-base",
	}
}

// DefaultEmbeddingRepos returns the Hugging Face repositories for the default models.
func DefaultEmbeddingRepos() map[EmbeddingSpace]string {
	return map[EmbeddingSpace]string{
		SpaceGeneral:   "sentence-transformers/all-MiniLM-L6-v2",
		SpaceTechnical: "flax-sentence-embeddings/stackoverflow_mpnet-base",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"all-MiniLM-L6-v2":         384,
		"stackoverflow_mpnet-base": 768,
		"nomic-embed-text":         768,
		"all-minilm":               384,
		"text-embedding-3-small":   1536,
		"text-embedding-3-large":   3072,
		"text-embedding-ada-002":   1536,
	}
}
