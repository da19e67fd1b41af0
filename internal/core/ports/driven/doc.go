// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Scanner: Walks a vault and produces candidate documents
//   - DocumentStore: Document persistence and full-text search (SQLite FTS5)
//   - UsageStore: Per-document access counters
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - IndexRunStore: Index pass history. Without it, stats omit the last run.
//   - IndexLock: Cross-process writer lock. Without it, passes are unguarded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
