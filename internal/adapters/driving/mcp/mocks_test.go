package mcp

import (
	"context"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// mockVault is a mock implementation of driving.VaultOperations.
type mockVault struct {
	indexed  int
	results  []domain.SearchResult
	err      error
	paths    []string
	queries  []string
	accessed []string
}

func (m *mockVault) IndexVault(_ context.Context, path string) (int, error) {
	m.paths = append(m.paths, path)
	return m.indexed, m.err
}

func (m *mockVault) SearchVault(_ context.Context, query string) ([]domain.SearchResult, error) {
	m.queries = append(m.queries, query)
	return m.results, m.err
}

func (m *mockVault) RecordAccess(_ context.Context, itemID string) {
	m.accessed = append(m.accessed, itemID)
}
