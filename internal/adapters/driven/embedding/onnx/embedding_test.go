package onnx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ppltr/internal/core/domain"
)

func TestNewEmbeddingService_RequiresRepo(t *testing.T) {
	_, err := NewEmbeddingService(Config{Model: "all-MiniLM-L6-v2"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	svc, err := NewEmbeddingService(Config{Repo: "sentence-transformers/all-MiniLM-L6-v2", Dimensions: 384})
	require.NoError(t, err)

	assert.Equal(t, "all-MiniLM-L6-v2", svc.ModelName())
	assert.Equal(t, 384, svc.Dimensions())
	assert.Equal(t, DefaultOnnxFile, svc.cfg.OnnxFile)
	assert.Equal(t, filepath.Join(home, ".ppltr", "models"), svc.cfg.ModelDir)
	assert.NoError(t, svc.Close())
}

func TestEmbedBatch_Empty(t *testing.T) {
	svc, err := NewEmbeddingService(Config{Repo: "org/model", ModelDir: t.TempDir()})
	require.NoError(t, err)

	out, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Nil(t, svc.pipeline, "no model is loaded for an empty batch")
}

func TestEnsureLoaded_CancelledContext(t *testing.T) {
	svc, err := NewEmbeddingService(Config{Repo: "org/model", ModelDir: t.TempDir()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, svc.Ping(ctx), context.Canceled)
}

func TestModelPath_UsesLocalCopy(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, "sentence-transformers_all-MiniLM-L6-v2")
	require.NoError(t, os.MkdirAll(local, 0755))

	svc, err := NewEmbeddingService(Config{Repo: "sentence-transformers/all-MiniLM-L6-v2", ModelDir: dir})
	require.NoError(t, err)

	path, err := svc.modelPath()
	require.NoError(t, err)
	assert.Equal(t, local, path)
}
