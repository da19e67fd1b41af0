package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoVault indicates that no vault operations were provided.
	ErrNoVault = errors.New("vault operations are required")

	// ErrNoVaultPath indicates that re-index was requested without a vault root.
	ErrNoVaultPath = errors.New("no vault path configured")
)
