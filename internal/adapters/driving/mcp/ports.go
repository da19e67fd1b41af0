package mcp

import (
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
)

// Ports is what the tool server needs from the rest of pigpen.
type Ports struct {
	// Vault indexes, searches and records access.
	Vault driving.VaultOperations

	// VaultPath is used by index_vault when the call gives no path.
	VaultPath string

	// Release is the pigpen build reported to clients. Empty means "dev".
	Release string
}

// Validate reports ErrMissingVault when no engine was supplied.
func (p *Ports) Validate() error {
	if p.Vault == nil {
		return ErrMissingVault
	}
	return nil
}
