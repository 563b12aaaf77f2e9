// Package mcp provides an MCP (Model Context Protocol) server exposing the
// dialog engine and the call logs of praxisvoice as tools.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
	"github.com/papercomputeco/praxisvoice/pkg/utils"
)

type Config struct {
	// Engine answers classify and simulate requests.
	Engine *callflow.Engine

	// Store is the call-log backend read by get_call_log.
	Store calllog.Store

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the dialog tools.
func NewServer(c Config) (*Server, error) {
	if c.Engine == nil {
		return nil, errors.New("dialog engine is required")
	}
	if c.Store == nil {
		return nil, errors.New("call log store is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "praxisvoice",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        classifyToolName,
		Description: classifyDescription,
	}, s.handleClassify)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        simulateToolName,
		Description: simulateDescription,
	}, s.handleSimulateTurn)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        callLogToolName,
		Description: callLogDescription,
	}, s.handleGetCallLog)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
