// Package ai creates embedding service adapters from settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ppltr/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/ppltr/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/ppltr/internal/adapters/driven/embedding/onnx"
	openaiembed "github.com/custodia-labs/ppltr/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for remote service connectivity validation.
const pingTimeout = 5 * time.Second

// Options holds adapter settings that are not part of domain.EmbeddingSettings.
type Options struct {
	// ModelDir receives downloaded ONNX models. Empty uses ~/.ppltr/models.
	ModelDir string

	// OnnxLibraryPath locates ONNX Runtime for ORT builds.
	OnnxLibraryPath string

	// SkipPing creates services without checking connectivity.
	SkipPing bool
}

// InitResult holds the encoder of each embedding space.
type InitResult struct {
	General   driven.EmbeddingService
	Technical driven.EmbeddingService
}

// Close releases both services.
func (r *InitResult) Close() {
	if r.General != nil {
		r.General.Close()
	}
	if r.Technical != nil {
		r.Technical.Close()
	}
}

// CreateEncoders creates and validates the services of both spaces.
func CreateEncoders(ctx context.Context, settings *domain.Settings, opts Options) (*InitResult, error) {
	result := &InitResult{}
	for _, space := range domain.AllSpaces() {
		embedding := settings.Embedding(space)
		svc, err := CreateAndValidateEmbeddingService(ctx, space, &embedding, opts)
		if err != nil {
			result.Close()
			return nil, fmt.Errorf("%s space: %w", space, err)
		}
		if space == domain.SpaceTechnical {
			result.Technical = svc
		} else {
			result.General = svc
		}
	}
	return result, nil
}

// CreateAndValidateEmbeddingService creates an embedding service and, for
// remote providers, validates connectivity. Errors wrap domain.ErrEmbeddingUnavailable.
func CreateAndValidateEmbeddingService(
	ctx context.Context,
	space domain.EmbeddingSpace,
	settings *domain.EmbeddingSettings,
	opts Options,
) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(space, settings, opts)
	if err != nil {
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w. Run 'ppltr config set embedding.<primary|secondary>.<key>' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if opts.SkipPing || !isRemote(settings.Provider) {
		return svc, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := svc.Ping(pingCtx); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: %s unreachable (%w)", domain.ErrEmbeddingUnavailable, settings.Provider, err)
	}
	return svc, nil
}

// CreateEmbeddingService creates the embedding service for one space.
func CreateEmbeddingService(
	space domain.EmbeddingSpace,
	settings *domain.EmbeddingSettings,
	opts Options,
) (driven.EmbeddingService, error) {
	if settings == nil {
		return nil, fmt.Errorf("%w: no settings for %s space", domain.ErrEmbeddingUnavailable, space)
	}
	if !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: %s provider %q is not configured",
			domain.ErrEmbeddingUnavailable, space, settings.Provider)
	}

	switch settings.Provider {
	case domain.EmbeddingProviderONNX:
		svc, err := onnx.NewEmbeddingService(onnx.Config{
			Model:       settings.Model,
			Repo:        settings.Repo,
			ModelDir:    opts.ModelDir,
			Dimensions:  settings.Dimensions,
			LibraryPath: opts.OnnxLibraryPath,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.EmbeddingProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		}), nil

	case domain.EmbeddingProviderOpenAI:
		svc, err := openaiembed.NewEmbeddingService(openaiembed.Config{
			APIKey:            settings.APIKey,
			BaseURL:           settings.BaseURL,
			Model:             settings.Model,
			Dimensions:        settings.Dimensions,
			RequestsPerSecond: settings.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		return svc, nil

	case domain.EmbeddingProviderHashing:
		return hashing.NewEmbeddingService(hashing.Config{
			Dimensions: settings.Dimensions,
			Seed:       hashSeed(space),
			NGram:      3,
		}), nil

	default:
		return nil, fmt.Errorf("%w: embedding provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
}

// hashSeed keeps the two hashing spaces independent.
func hashSeed(space domain.EmbeddingSpace) uint32 {
	if space == domain.SpaceTechnical {
		return 1
	}
	return 0
}

func isRemote(p domain.EmbeddingProvider) bool {
	return p == domain.EmbeddingProviderOllama || p == domain.EmbeddingProviderOpenAI
}
