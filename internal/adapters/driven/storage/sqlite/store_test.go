package sqlite

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func testKey(fingerprint string, facet domain.Facet, dims int) driven.EmbeddingKey {
	return driven.EmbeddingKey{
		Fingerprint: fingerprint,
		Space:       domain.SpaceGeneral,
		Model:       "all-MiniLM-L6-v2",
		Dimensions:  dims,
		Facet:       facet,
	}
}

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(filepath.Join(dir, "nested", "data"))
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "nested", "data", DBName), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(home, ".ppltr", "data", DBName), store.Path())
}

func TestNewStore_Migrations(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	for _, table := range []string{"embedding_sets", "embedding_vectors"} {
		var n int
		require.NoError(t, store.db.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n))
		assert.Equal(t, 1, n, "table %s should exist", table)
	}
	require.NoError(t, store.Close())

	// Reopening does not re-run applied migrations.
	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()
	var count int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestStore_SaveLoad_BitIdentical(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	vectors := [][]float32{
		{0.1, -0.2, 0.3},
		{float32(math.Inf(1)), float32(math.SmallestNonzeroFloat32), -0},
		{1e-38, 3.4028235e38, 0.333333343},
	}
	key := testKey("abc", domain.FacetFullText, 3)
	require.NoError(t, store.Save(ctx, key, vectors))

	loaded, err := store.Load(ctx, key)
	require.NoError(t, err)
	require.Len(t, loaded, len(vectors))
	for i := range vectors {
		for j := range vectors[i] {
			assert.Equal(t, math.Float32bits(vectors[i][j]), math.Float32bits(loaded[i][j]), "vector %d[%d]", i, j)
		}
	}
}

func TestStore_Load_NotFound(t *testing.T) {
	store := setupTestStore(t)
	_, err := store.Load(context.Background(), testKey("missing", domain.FacetTitle, 2))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_Save_Replaces(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	key := testKey("abc", domain.FacetExcerpt, 2)

	require.NoError(t, store.Save(ctx, key, [][]float32{{1, 2}, {3, 4}, {5, 6}}))
	require.NoError(t, store.Save(ctx, key, [][]float32{{7, 8}}))

	loaded, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{7, 8}}, loaded)

	var orphans int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM embedding_vectors WHERE set_id NOT IN (SELECT id FROM embedding_sets)").Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestStore_Save_RaggedVectors(t *testing.T) {
	store := setupTestStore(t)
	err := store.Save(context.Background(), testKey("abc", domain.FacetTitle, 2), [][]float32{{1, 2}, {3}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.Save(context.Background(), testKey("abc", domain.FacetTitle, 4), [][]float32{{1, 2}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_DimensionChangeMisses(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	wide := testKey("abc", domain.FacetTitle, 3)
	narrow := testKey("abc", domain.FacetTitle, 2)

	require.NoError(t, store.Save(ctx, wide, [][]float32{{1, 2, 3}}))
	_, err := store.Load(ctx, narrow)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, store.Save(ctx, narrow, [][]float32{{4, 5}}))
	loaded, err := store.Load(ctx, narrow)
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{4, 5}}, loaded)

	// one set per model and facet; the wider one was replaced
	_, err = store.Load(ctx, wide)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []driven.EmbeddingKey{narrow}, keys)
}

func TestStore_Load_Corrupted(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	key := testKey("abc", domain.FacetTitle, 2)
	require.NoError(t, store.Save(ctx, key, [][]float32{{1, 2}, {3, 4}}))

	_, err := store.db.Exec("DELETE FROM embedding_vectors WHERE position = 1")
	require.NoError(t, err)

	_, err = store.Load(ctx, key)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_KeysAndPurge(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	for _, fp := range []string{"new", "old"} {
		for _, f := range domain.AllFacets() {
			require.NoError(t, store.Save(ctx, testKey(fp, f, 1), [][]float32{{1}}))
		}
	}
	technical := driven.EmbeddingKey{Fingerprint: "new", Space: domain.SpaceTechnical, Model: "m", Dimensions: 1, Facet: domain.FacetTitle}
	require.NoError(t, store.Save(ctx, technical, [][]float32{{2}}))

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 7)
	assert.Equal(t, testKey("new", domain.FacetExcerpt, 1), keys[0])
	assert.Equal(t, technical, keys[3])
	assert.Equal(t, "old", keys[4].Fingerprint)

	n, err := store.Purge(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var vectors int
	require.NoError(t, store.db.QueryRow("SELECT COUNT(*) FROM embedding_vectors").Scan(&vectors))
	assert.Equal(t, 4, vectors)

	n, err = store.Purge(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	keys, err = store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	errs := make(chan error, len(domain.AllFacets()))
	for _, f := range domain.AllFacets() {
		go func() { errs <- store.Save(ctx, testKey("abc", f, 3), [][]float32{{1, 2, 3}}) }()
	}
	for range domain.AllFacets() {
		assert.NoError(t, <-errs)
	}

	keys, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, 3)
}

func TestFloat32Codec(t *testing.T) {
	v := []float32{0, -1.5, 3.25}
	assert.Equal(t, v, bytesToFloat32Slice(float32SliceToBytes(v)))
	assert.Len(t, float32SliceToBytes(v), 12)
	assert.Empty(t, bytesToFloat32Slice(nil))
}
