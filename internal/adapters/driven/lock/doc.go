// Package lock provides cross-process locking for the index.
//
// Adapters:
//   - FileLock: advisory file lock implementing driven.IndexLock
package lock
