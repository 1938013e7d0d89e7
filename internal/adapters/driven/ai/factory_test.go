package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ppltr/internal/adapters/driven/embedding/hashing"
	ollamaembed "github.com/custodia-labs/ppltr/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/ppltr/internal/adapters/driven/embedding/onnx"
	openaiembed "github.com/custodia-labs/ppltr/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/ppltr/internal/core/domain"
)

func TestInitResult_Close(t *testing.T) {
	// Should not panic with nil services.
	(&InitResult{}).Close()
}

func TestCreateEmbeddingService(t *testing.T) {
	tests := []struct {
		name     string
		settings *domain.EmbeddingSettings
		wantType any
		wantErr  bool
	}{
		{name: "nil settings", settings: nil, wantErr: true},
		{name: "unknown provider", settings: &domain.EmbeddingSettings{Provider: "cohere"}, wantErr: true},
		{
			name:     "openai without key",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI},
			wantErr:  true,
		},
		{
			name:     "onnx without repo",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderONNX, Model: "m"},
			wantErr:  true,
		},
		{
			name: "onnx",
			settings: &domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderONNX, Model: "all-MiniLM-L6-v2",
				Repo: "sentence-transformers/all-MiniLM-L6-v2", Dimensions: 384,
			},
			wantType: &onnx.EmbeddingService{},
		},
		{
			name:     "ollama",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOllama, Model: "nomic-embed-text"},
			wantType: &ollamaembed.EmbeddingService{},
		},
		{
			name: "openai",
			settings: &domain.EmbeddingSettings{
				Provider: domain.EmbeddingProviderOpenAI, APIKey: "k", Model: "text-embedding-3-small",
			},
			wantType: &openaiembed.EmbeddingService{},
		},
		{
			name:     "hashing",
			settings: &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing, Dimensions: 64},
			wantType: &hashing.EmbeddingService{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateEmbeddingService(domain.SpaceGeneral, tt.settings, Options{ModelDir: t.TempDir()})
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, svc)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, svc)
		})
	}
}

func TestCreateAndValidate_WrapsUnavailable(t *testing.T) {
	_, err := CreateAndValidateEmbeddingService(context.Background(), domain.SpaceGeneral,
		&domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI}, Options{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestCreateAndValidate_PingsRemote(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer down.Close()

	settings := &domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOllama, BaseURL: down.URL}
	_, err := CreateAndValidateEmbeddingService(context.Background(), domain.SpaceGeneral, settings, Options{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	svc, err := CreateAndValidateEmbeddingService(context.Background(), domain.SpaceGeneral, settings, Options{SkipPing: true})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestCreateEncoders_Hashing(t *testing.T) {
	settings := &domain.Settings{
		Primary:   domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing, Dimensions: 32},
		Secondary: domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing, Dimensions: 48},
	}

	result, err := CreateEncoders(context.Background(), settings, Options{})
	require.NoError(t, err)
	defer result.Close()

	assert.Equal(t, 32, result.General.Dimensions())
	assert.Equal(t, 48, result.Technical.Dimensions())
	assert.NotEqual(t, result.General.ModelName(), result.Technical.ModelName())
}

func TestCreateEncoders_FailsOnEitherSpace(t *testing.T) {
	settings := &domain.Settings{
		Primary:   domain.EmbeddingSettings{Provider: domain.EmbeddingProviderHashing},
		Secondary: domain.EmbeddingSettings{Provider: domain.EmbeddingProviderOpenAI},
	}
	_, err := CreateEncoders(context.Background(), settings, Options{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.ErrorContains(t, err, "technical space")
}
