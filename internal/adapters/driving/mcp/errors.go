// Package mcp provides an MCP (Model Context Protocol) server adapter for pigpen.
// It lets AI assistants index the vault, search it and report which notes they used.
package mcp

import "errors"

// ErrMissingVault is returned when the vault operations are not provided.
var ErrMissingVault = errors.New("mcp: vault operations are required")

// ErrMissingVaultPath is returned by index_vault when neither the call nor
// the server supplies a vault path.
var ErrMissingVaultPath = errors.New("no vault path given and vault.path is not configured")
