// Package hashing provides a deterministic feature-hashing embedding service.
// It needs no model or network and is used offline and in tests.
package hashing

import (
	"context"
	"fmt"
	"strings"

	"github.com/twmb/murmur3"
	"github.com/viterin/vek/vek32"

	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/lexical"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultDimensions = 384
	DefaultSeed       = 0
)

// Config holds configuration for the hashing embedding service.
type Config struct {
	// Dimensions is the vector size (default: 384).
	Dimensions int

	// Seed selects an independent hash family. Two spaces configured with
	// different seeds produce unrelated vectors.
	Seed uint32

	// NGram adds character n-grams of this length; zero disables them.
	NGram int
}

// EmbeddingService embeds text by hashing terms into a fixed-size signed vector.
type EmbeddingService struct {
	dims  int
	seed  uint32
	ngram int
}

// NewEmbeddingService creates a hashing embedding service.
func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	return &EmbeddingService{dims: cfg.Dimensions, seed: cfg.Seed, ngram: cfg.NGram}
}

// Embed returns the unit-length hashed vector of text. Text without terms
// yields the zero vector.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	vec := make([]float32, s.dims)
	for _, term := range lexical.Terms(text) {
		s.add(vec, term, 1)
		if s.ngram > 0 {
			for _, g := range charNGrams(term, s.ngram) {
				s.add(vec, "#"+g, 0.5)
			}
		}
	}
	normalize(vec)
	return vec, nil
}

// EmbedBatch embeds each text in order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := s.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dims
}

// ModelName identifies the hash family; it is part of the cache key.
func (s *EmbeddingService) ModelName() string {
	if s.ngram > 0 {
		return fmt.Sprintf("hashing-%d-s%d-n%d", s.dims, s.seed, s.ngram)
	}
	return fmt.Sprintf("hashing-%d-s%d", s.dims, s.seed)
}

// Ping always succeeds.
func (s *EmbeddingService) Ping(context.Context) error {
	return nil
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	return nil
}

// add hashes feature into a bucket; the top bit of a second hash picks the sign.
func (s *EmbeddingService) add(vec []float32, feature string, weight float32) {
	data := []byte(feature)
	bucket := murmur3.SeedSum32(s.seed, data) % uint32(len(vec))
	if murmur3.SeedSum32(s.seed+1, data)&(1<<31) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

func charNGrams(term string, n int) []string {
	runes := []rune(strings.ToLower(term))
	if len(runes) < n {
		return nil
	}
	grams := make([]string, 0, len(runes)-n+1)
	for i := 0; i+n <= len(runes); i++ {
		grams = append(grams, string(runes[i:i+n]))
	}
	return grams
}

func normalize(vec []float32) {
	norm := vek32.Norm(vec)
	if norm == 0 {
		return
	}
	vek32.MulNumber_Inplace(vec, 1/norm)
}
