package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/pigpen/internal/core/domain"
)

// IndexInput is the input schema for the index_vault tool.
type IndexInput struct {
	Path string `json:"path,omitempty" jsonschema:"vault directory to index (default: configured vault.path)"`
}

// IndexOutput is the output schema for the index_vault tool.
type IndexOutput struct {
	Indexed int `json:"indexed"`
}

// SearchInput is the input schema for the search_vault tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"text to find; any substring of three or more characters matches"`
}

// SearchOutput is the output schema for the search_vault tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ID         string  `json:"id"`
	Path       string  `json:"path"`
	Title      string  `json:"title"`
	Preview    string  `json:"preview,omitempty"`
	Score      float64 `json:"score"`
	UsageCount int64   `json:"usage_count,omitempty"`
}

// RecordAccessInput is the input schema for the record_access tool.
type RecordAccessInput struct {
	ID string `json:"id" jsonschema:"id of the search result that was used"`
}

// RecordAccessOutput is the output schema for the record_access tool.
type RecordAccessOutput struct {
	Recorded bool `json:"recorded"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "index_vault",
		Description: "Re-index every note in the vault and return the number of documents written",
	}, s.handleIndex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_vault",
		Description: "Search the indexed vault; returns at most 25 ranked results with highlighted previews",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "record_access",
		Description: "Report that a search result was used so it ranks higher in future searches",
	}, s.handleRecordAccess)
}

// handleIndex handles the index_vault tool invocation.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	path := strings.TrimSpace(input.Path)
	if path == "" {
		path = s.ports.VaultPath
	}
	if path == "" {
		return nil, IndexOutput{}, ErrMissingVaultPath
	}

	n, err := s.ports.Vault.IndexVault(ctx, path)
	if err != nil {
		return nil, IndexOutput{}, err
	}

	return nil, IndexOutput{Indexed: n}, nil
}

// handleSearch handles the search_vault tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Vault.SearchVault(ctx, input.Query)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = toResultOutput(&results[i])
	}

	return nil, output, nil
}

// handleRecordAccess handles the record_access tool invocation.
func (s *Server) handleRecordAccess(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordAccessInput,
) (*mcp.CallToolResult, RecordAccessOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, RecordAccessOutput{}, fmt.Errorf("%w: id is empty", domain.ErrInvalidInput)
	}

	s.ports.Vault.RecordAccess(ctx, id)

	return nil, RecordAccessOutput{Recorded: true}, nil
}

func toResultOutput(r *domain.SearchResult) SearchResultOutput {
	return SearchResultOutput{
		ID:         r.ID,
		Path:       r.Path,
		Title:      r.Title,
		Preview:    r.Preview,
		Score:      r.Score,
		UsageCount: r.UsageCount,
	}
}
