package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pigpen/internal/adapters/driving/mcp"
	"github.com/custodia-labs/pigpen/internal/core/services"
	"github.com/custodia-labs/pigpen/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server for AI assistant integration.

The server communicates over stdio using JSON-RPC and exposes three tools:
index_vault, search_vault and record_access. The store is opened in the
background; calls made before it is ready fail with
"search engine not initialized".

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "pigpen": {
        "command": "/path/to/pigpen",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	host := services.NewEngineHost()
	defer host.Close()

	server, err := mcp.NewServer(&mcp.Ports{
		Vault:     host,
		VaultPath: settings.Vault.Path,
		Release:   version,
	})
	if err != nil {
		return err
	}

	go attachEngine(host)

	return server.Run(cmd.Context())
}

// attachEngine opens the store and hands the engine to host. A failure
// leaves the host uninitialized and is logged.
func attachEngine(host *services.EngineHost) {
	backend, err := openBackend()
	if err != nil {
		logger.Warn("Opening store: %v", err)
		return
	}

	if err := host.Attach(backend.Engine); err != nil {
		logger.Warn("Attaching engine: %v", err)
		if closeErr := backend.Engine.Close(); closeErr != nil {
			logger.Warn("Closing store: %v", closeErr)
		}
		return
	}
	logger.Debug("Search engine ready")
}
