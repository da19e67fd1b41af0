// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - DocumentStore: Document persistence and FTS5 full-text search
//   - UsageStore: Per-document access counters
//   - IndexRunStore: Index pass history
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Documents live in a regular table keyed by ID; the documents_fts virtual table
// is an external-content FTS5 index over it, kept in sync by triggers, using the
// trigram tokenizer.
//
// # Data Location
//
// By default, the database is stored at ~/.pigpen/data/pigpen.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
