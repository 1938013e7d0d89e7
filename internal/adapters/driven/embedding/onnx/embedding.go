// Package onnx runs sentence-transformer models locally through hugot.
//
// Models are downloaded once from Hugging Face into the model directory and
// loaded lazily on first use. The default build uses hugot's pure Go backend;
// building with the ORT tag switches to ONNX Runtime.
package onnx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
	"github.com/custodia-labs/ppltr/internal/logger"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// DefaultOnnxFile is the model file fetched from sentence-transformers repositories.
const DefaultOnnxFile = "onnx/model.onnx"

// Config holds configuration for the ONNX embedding service.
type Config struct {
	// Model names the model; it is part of the cache key.
	Model string

	// Repo is the Hugging Face repository, e.g. "sentence-transformers/all-MiniLM-L6-v2".
	Repo string

	// ModelDir receives downloaded models (default: ~/.ppltr/models).
	ModelDir string

	// OnnxFile selects the model file inside the repository (default: onnx/model.onnx).
	OnnxFile string

	// Dimensions is the output vector size.
	Dimensions int

	// LibraryPath locates the ONNX Runtime shared library (ORT builds only).
	LibraryPath string
}

// EmbeddingService embeds text with a local feature-extraction pipeline.
type EmbeddingService struct {
	cfg Config

	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
}

// NewEmbeddingService creates an ONNX embedding service. The model is not
// loaded until the first Embed, EmbedBatch or Ping call.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Repo == "" {
		return nil, fmt.Errorf("%w: onnx provider needs a model repository", domain.ErrEmbeddingUnavailable)
	}
	if cfg.Model == "" {
		cfg.Model = filepath.Base(cfg.Repo)
	}
	if cfg.OnnxFile == "" {
		cfg.OnnxFile = DefaultOnnxFile
	}
	if cfg.ModelDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		cfg.ModelDir = filepath.Join(home, ".ppltr", "models")
	}
	return &EmbeddingService{cfg: cfg}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch runs the pipeline over texts.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	output, err := s.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}
	if len(output.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: pipeline returned %d embeddings for %d inputs",
			domain.ErrEmbeddingUnavailable, len(output.Embeddings), len(texts))
	}
	return output.Embeddings, nil
}

// Dimensions returns the configured vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.cfg.Dimensions
}

// ModelName returns the model name.
func (s *EmbeddingService) ModelName() string {
	return s.cfg.Model
}

// Ping loads the model, downloading it if needed.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLoaded(ctx)
}

// Close destroys the session.
func (s *EmbeddingService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipeline = nil
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.session = nil
	return err
}

// ensureLoaded builds the pipeline. Caller must hold mu.
func (s *EmbeddingService) ensureLoaded(ctx context.Context) error {
	if s.pipeline != nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	modelPath, err := s.modelPath()
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	session, err := newSession(s.cfg)
	if err != nil {
		return fmt.Errorf("%w: create session: %w", domain.ErrEmbeddingUnavailable, err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      s.cfg.Model,
	})
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("%w: create pipeline: %w", domain.ErrEmbeddingUnavailable, err)
	}

	logger.Info("Loaded %s from %s", s.cfg.Model, modelPath)
	s.session = session
	s.pipeline = pipeline
	return nil
}

// modelPath returns the local model directory, downloading the repository
// when it is not present.
func (s *EmbeddingService) modelPath() (string, error) {
	local := filepath.Join(s.cfg.ModelDir, strings.ReplaceAll(s.cfg.Repo, "/", "_"))
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	if err := os.MkdirAll(s.cfg.ModelDir, 0755); err != nil {
		return "", fmt.Errorf("create model dir: %w", err)
	}
	logger.Info("Downloading %s into %s", s.cfg.Repo, s.cfg.ModelDir)

	opts := hugot.NewDownloadOptions()
	opts.OnnxFilePath = s.cfg.OnnxFile
	path, err := hugot.DownloadModel(s.cfg.Repo, s.cfg.ModelDir, opts)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", s.cfg.Repo, err)
	}
	return path, nil
}
