package tui

import "errors"

// ErrMissingVault is returned when the vault operations are not provided.
var ErrMissingVault = errors.New("tui: vault operations are required")
