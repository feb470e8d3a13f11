// Package sqlite provides a SQLite-based implementation of the coach stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. One database connection backs both stores:
//
//   - CredentialsStore: document store tokens, one row per provider
//   - LibraryStore: files imported into the local library, deduplicated by content hash
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at <coach home>/data/coach.db.
package sqlite
