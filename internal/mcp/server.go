package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/docqa-server/internal/api"
	"github.com/bull/docqa-server/internal/fingerprint"
	"github.com/bull/docqa-server/internal/storage"
)

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	Answers api.AnswerService
	Runner  *api.Runner
	Index   *storage.Store
	Ledger  *fingerprint.Ledger
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "docqa-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_documents",
		Description: "Answer a question from the indexed PDF corpus. Retrieves the most relevant fragments and composes a grounded answer.",
	}, makeAskHandler(cfg.Answers))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "trigger_ingestion",
		Description: "Start a background ingestion run that indexes new PDF files from the source directory. Already-indexed files are skipped.",
	}, makeTriggerHandler(cfg.Runner))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Get the current status of the document index: fragment count, recorded documents, and the state of the most recent ingestion run.",
	}, makeStatusHandler(cfg.Index, cfg.Ledger, cfg.Runner))

	return &Server{server: server}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
