package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStorage indicates the document store could not be opened, migrated,
	// read or written. It is fatal to the operation that triggered it.
	ErrStorage = errors.New("storage error")

	// ErrMalformedQuery indicates the full-text matcher rejected the query
	// expression. The engine state is unaffected.
	ErrMalformedQuery = errors.New("malformed query")

	// ErrNotInitialized indicates an operation was invoked before the
	// search engine was attached to its host.
	ErrNotInitialized = errors.New("search engine not initialized")

	// ErrEngineClosed indicates the search engine has been shut down.
	ErrEngineClosed = errors.New("search engine closed")

	// ErrIndexInProgress indicates another process holds the index lock.
	ErrIndexInProgress = errors.New("index in progress")
)

// IsStorageError reports whether err is a StorageError.
func IsStorageError(err error) bool {
	return errors.Is(err, ErrStorage)
}

// IsQueryError reports whether err is a QueryError.
func IsQueryError(err error) bool {
	return errors.Is(err, ErrMalformedQuery)
}
