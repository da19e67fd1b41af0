package services

import (
	"context"
	"sync"

	"github.com/custodia-labs/pigpen/internal/core/domain"
	"github.com/custodia-labs/pigpen/internal/core/ports/driving"
	"github.com/custodia-labs/pigpen/internal/logger"
)

// EngineState describes the lifecycle of the engine held by an EngineHost.
type EngineState int

// Engine lifecycle states.
const (
	EngineUninitialized EngineState = iota
	EngineReady
	EngineClosed
)

// String returns the string representation of the state.
func (s EngineState) String() string {
	switch s {
	case EngineUninitialized:
		return "uninitialized"
	case EngineReady:
		return "ready"
	case EngineClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Ensure EngineHost implements the interface.
var _ driving.VaultOperations = (*EngineHost)(nil)

// EngineHost holds the process-wide engine for long-running front ends
// that start serving before the store has been opened.
type EngineHost struct {
	mu     sync.RWMutex
	engine driving.VaultEngine
	state  EngineState
}

// NewEngineHost creates a host with no engine attached.
func NewEngineHost() *EngineHost {
	return &EngineHost{}
}

// Attach installs the engine and marks the host ready.
func (h *EngineHost) Attach(engine driving.VaultEngine) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == EngineClosed {
		return domain.ErrEngineClosed
	}
	h.engine = engine
	h.state = EngineReady
	return nil
}

// State returns the current lifecycle state.
func (h *EngineHost) State() EngineState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// Engine returns the attached engine.
func (h *EngineHost) Engine() (driving.VaultEngine, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	switch h.state {
	case EngineReady:
		return h.engine, nil
	case EngineClosed:
		return nil, domain.ErrEngineClosed
	default:
		return nil, domain.ErrNotInitialized
	}
}

// IndexVault delegates to the attached engine.
func (h *EngineHost) IndexVault(ctx context.Context, path string) (int, error) {
	engine, err := h.Engine()
	if err != nil {
		return 0, err
	}
	return engine.IndexVault(ctx, path)
}

// SearchVault delegates to the attached engine.
func (h *EngineHost) SearchVault(ctx context.Context, query string) ([]domain.SearchResult, error) {
	engine, err := h.Engine()
	if err != nil {
		return nil, err
	}
	return engine.SearchVault(ctx, query)
}

// RecordAccess delegates to the attached engine. Before attach the call
// is logged and dropped.
func (h *EngineHost) RecordAccess(ctx context.Context, itemID string) {
	engine, err := h.Engine()
	if err != nil {
		logger.Warn("Ignoring access to %q: %v", itemID, err)
		return
	}
	engine.RecordAccess(ctx, itemID)
}

// Close closes the attached engine and refuses further attaches.
func (h *EngineHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.state == EngineClosed {
		return nil
	}
	h.state = EngineClosed

	if h.engine == nil {
		return nil
	}
	return h.engine.Close()
}
