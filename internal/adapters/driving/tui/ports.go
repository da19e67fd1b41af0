// Package tui provides the interactive search HUD for pigpen.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Vault runs searches, re-indexes and access recording.
	Vault driving.VaultOperations

	// Actions opens and copies results. Optional.
	Actions driving.ResultActionService

	// Settings supplies highlight markers. Optional.
	Settings driving.SettingsService

	// VaultPath is the root re-indexed from the HUD. Optional.
	VaultPath string
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(vault driving.VaultOperations, actions driving.ResultActionService) *Ports {
	return &Ports{
		Vault:   vault,
		Actions: actions,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Vault == nil {
		return ErrMissingVault
	}
	return nil
}
