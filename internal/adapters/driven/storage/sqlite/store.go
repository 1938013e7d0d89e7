package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ppltr/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ppltr/internal/core/domain"
	"github.com/custodia-labs/ppltr/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.EmbeddingCache = (*Store)(nil)

// DBName is the database file name inside the data directory.
const DBName = "embeddings.db"

// Store is a SQLite-backed embedding cache.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store in dataDir.
// If dataDir is empty, defaults to ~/.ppltr/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ppltr", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBName)

	// WAL lets a running server read while a CLI invocation warms the cache.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One writer at a time; concurrent Saves queue on the pool.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations and records their versions.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_embeddings.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}
	return nil
}

// Load returns the vectors stored under key, in position order.
// Returns domain.ErrNotFound if no set exists for key, including a set saved
// for the same model at another dimension.
func (s *Store) Load(ctx context.Context, key driven.EmbeddingKey) ([][]float32, error) {
	var id int64
	var count, dims int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, count, dims FROM embedding_sets
		WHERE fingerprint = ? AND space = ? AND model = ? AND facet = ? AND dims = ?
	`, key.Fingerprint, string(key.Space), key.Model, string(key.Facet), key.Dimensions).Scan(&id, &count, &dims)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying embedding set: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT position, vector FROM embedding_vectors WHERE set_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("querying embedding vectors: %w", err)
	}
	defer rows.Close()

	vectors := make([][]float32, 0, count)
	for rows.Next() {
		var position int
		var blob []byte
		if err := rows.Scan(&position, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding vector: %w", err)
		}
		if position != len(vectors) {
			return nil, fmt.Errorf("embedding set %d: missing vector at position %d", id, len(vectors))
		}
		if len(blob) != dims*4 {
			return nil, fmt.Errorf("embedding set %d: vector %d has %d bytes, want %d", id, position, len(blob), dims*4)
		}
		vectors = append(vectors, bytesToFloat32Slice(blob))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedding vectors: %w", err)
	}
	if len(vectors) != count {
		return nil, fmt.Errorf("embedding set %d: %d vectors stored, want %d", id, len(vectors), count)
	}
	return vectors, nil
}

// Save replaces the set stored under key. Every vector must have
// key.Dimensions components. A set saved earlier for the same model at
// another dimension is replaced too.
func (s *Store) Save(ctx context.Context, key driven.EmbeddingKey, vectors [][]float32) error {
	dims := key.Dimensions
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("%w: vector %d has %d dimensions, want %d", domain.ErrInvalidInput, i, len(v), dims)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM embedding_sets
		WHERE fingerprint = ? AND space = ? AND model = ? AND facet = ?
	`, key.Fingerprint, string(key.Space), key.Model, string(key.Facet)); err != nil {
		return fmt.Errorf("deleting previous set: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO embedding_sets (fingerprint, space, model, facet, count, dims, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, key.Fingerprint, string(key.Space), key.Model, string(key.Facet), len(vectors), dims, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving embedding set: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading set id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO embedding_vectors (set_id, position, vector) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing vector insert: %w", err)
	}
	defer stmt.Close()

	for i, v := range vectors {
		if _, err := stmt.ExecContext(ctx, id, i, float32SliceToBytes(v)); err != nil {
			return fmt.Errorf("saving vector %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Keys lists the stored sets ordered by fingerprint, space, model, dimensions
// and facet.
func (s *Store) Keys(ctx context.Context) ([]driven.EmbeddingKey, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT fingerprint, space, model, dims, facet FROM embedding_sets
		ORDER BY fingerprint, space, model, dims, facet
	`)
	if err != nil {
		return nil, fmt.Errorf("listing embedding sets: %w", err)
	}
	defer rows.Close()

	keys := []driven.EmbeddingKey{}
	for rows.Next() {
		var k driven.EmbeddingKey
		var space, facet string
		if err := rows.Scan(&k.Fingerprint, &space, &k.Model, &k.Dimensions, &facet); err != nil {
			return nil, fmt.Errorf("scanning embedding set: %w", err)
		}
		k.Space = domain.EmbeddingSpace(space)
		k.Facet = domain.Facet(facet)
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Purge removes sets whose fingerprint differs from keep, or every set when
// keep is empty. Vectors are removed by cascade.
func (s *Store) Purge(ctx context.Context, keep string) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM embedding_sets WHERE ? = '' OR fingerprint <> ?
	`, keep, keep)
	if err != nil {
		return 0, fmt.Errorf("purging embedding sets: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting purged sets: %w", err)
	}
	return int(n), nil
}

// float32SliceToBytes encodes v as little-endian IEEE 754 bits.
func float32SliceToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice decodes the output of float32SliceToBytes.
func bytesToFloat32Slice(data []byte) []float32 {
	v := make([]float32, len(data)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return v
}
