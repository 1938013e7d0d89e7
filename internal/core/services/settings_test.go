package services

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ppltr/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/logger"
)

func newTestSettingsService(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)
	svc.SetEnvFunc(func(k string) string { return env[k] })
	return svc, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	svc, _ := newTestSettingsService(nil)

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, "LTR_resources/patterns.json", settings.Corpus.Path)
	assert.Equal(t, "sqlite", settings.Cache.Driver)
	assert.Equal(t, 0.75, settings.BM25.B)
	assert.Equal(t, 1.6, settings.BM25.K1)
	assert.Equal(t, domain.EmbeddingProviderONNX, settings.Primary.Provider)
	assert.Equal(t, "all-MiniLM-L6-v2", settings.Primary.Model)
	assert.Equal(t, "sentence-transformers/all-MiniLM-L6-v2", settings.Primary.Repo)
	assert.Equal(t, 384, settings.Primary.Dimensions)
	assert.Equal(t, "stackoverflow_mpnet-base", settings.Secondary.Model)
	assert.Equal(t, 768, settings.Secondary.Dimensions)
	assert.Equal(t, "java", settings.Ranker.Java)
	assert.Equal(t, 5, settings.Ranker.TopK)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	svc, store := newTestSettingsService(nil)
	require.NoError(t, store.Set("corpus.path", "/data/patterns.json"))
	require.NoError(t, store.Set("corpus.strip_markdown", true))
	require.NoError(t, store.Set("bm25.k1", 1.2))
	require.NoError(t, store.Set("recommend.top_k", int64(3)))
	require.NoError(t, store.Set("embedding.secondary.provider", "ollama"))
	require.NoError(t, store.Set("embedding.secondary.model", "nomic-embed-text"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "/data/patterns.json", settings.Corpus.Path)
	assert.True(t, settings.Corpus.StripMarkdown)
	assert.Equal(t, 1.2, settings.BM25.K1)
	assert.Equal(t, 3, settings.Ranker.TopK)
	assert.Equal(t, domain.EmbeddingProviderOllama, settings.Secondary.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Secondary.Model)
	assert.Equal(t, 768, settings.Secondary.Dimensions)
	assert.Empty(t, settings.Secondary.Repo)
}

func TestSettingsService_Get_EnvOverrides(t *testing.T) {
	svc, store := newTestSettingsService(map[string]string{
		"PPLTR_CORPUS_PATH":                "/env/patterns.json",
		"PPLTR_EMBEDDING_PRIMARY_PROVIDER": "openai",
		"PPLTR_EMBEDDING_PRIMARY_MODEL":    "text-embedding-3-small",
		"OPENAI_API_KEY":                   "sk-test",
	})
	require.NoError(t, store.Set("corpus.path", "/file/patterns.json"))

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "/env/patterns.json", settings.Corpus.Path)
	assert.Equal(t, domain.EmbeddingProviderOpenAI, settings.Primary.Provider)
	assert.Equal(t, "sk-test", settings.Primary.APIKey)
	assert.Equal(t, 1536, settings.Primary.Dimensions)
	assert.Empty(t, settings.Secondary.APIKey)
}

func TestSettingsService_Get_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{"bm25.b", 1.5},
		{"cache.driver", "postgres"},
		{"embedding.primary.provider", "cohere"},
		{"recommend.top_k", "many"},
		{"corpus.strip_markdown", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			svc, store := newTestSettingsService(nil)
			require.NoError(t, store.Set(tt.key, tt.value))
			_, err := svc.Get()
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_Set(t *testing.T) {
	svc, store := newTestSettingsService(nil)

	require.NoError(t, svc.Set("ranker.jar", "/opt/RankLib.jar"))
	assert.Equal(t, "/opt/RankLib.jar", store.GetString("ranker.jar"))

	assert.ErrorIs(t, svc.Set("bm25.b", "2"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set("bm25.b", "abc"), domain.ErrInvalidInput)
	assert.ErrorIs(t, svc.Set("no.such.key", "x"), domain.ErrInvalidInput)
}

func TestSettingsService_Keys(t *testing.T) {
	svc, _ := newTestSettingsService(nil)
	keys := svc.Keys()
	assert.Contains(t, keys, "corpus.path")
	assert.Contains(t, keys, "embedding.secondary.base_url")
	assert.Contains(t, keys, "recommend.top_k")
	assert.Equal(t, "corpus.path", keys[0])
}

func TestSettingsService_Unset(t *testing.T) {
	svc, store := newTestSettingsService(nil)
	require.NoError(t, svc.Set("bm25.k1", "1.2"))

	require.NoError(t, svc.Unset("bm25.k1"))
	_, ok := store.Get("bm25.k1")
	assert.False(t, ok)

	settings, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, 1.6, settings.BM25.K1)

	assert.ErrorIs(t, svc.Unset("no.such.key"), domain.ErrInvalidInput)
}

func TestSettingsService_Get_WarnsOnUnknownKeys(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	defer logger.SetOutput(os.Stderr)

	svc, store := newTestSettingsService(nil)
	require.NoError(t, store.Set("ranker.jarr", "typo.jar"))

	_, err := svc.Get()
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `unknown config key "ranker.jarr"`)
}
