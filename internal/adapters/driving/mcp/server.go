package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// devRelease is reported when the binary was built without a release.
const devRelease = "dev"

// instructions is sent to clients on initialize.
const instructions = `pigpen searches a local vault of Markdown notes.
Call index_vault after notes change, search_vault to find notes by any
substring of three or more characters, and record_access with a result id
when the user opens a note so it ranks higher next time.`

// Server exposes the vault tools to MCP clients.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer builds the tool server over ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	release := ports.Release
	if release == "" {
		release = devRelease
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "pigpen", Version: release},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}
	s.registerTools()
	return s, nil
}

// Run serves a single client on stdin and stdout until ctx is cancelled or
// the client hangs up.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, &mcp.StdioTransport{})
}

// Serve is Run over an arbitrary transport.
func (s *Server) Serve(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}
