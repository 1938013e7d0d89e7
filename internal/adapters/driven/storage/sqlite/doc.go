// Package sqlite persists pattern embeddings in a SQLite database.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It implements driven.EmbeddingCache: one embedding set per
// (corpus fingerprint, space, model, facet), each holding one vector per
// pattern in corpus order.
//
// # Schema
//
// The schema is managed through versioned migrations in migrations/. Each
// migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.ppltr/data/embeddings.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. A set is replaced inside a
// single transaction, so readers never observe a partially written set.
package sqlite
