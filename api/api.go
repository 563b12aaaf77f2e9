package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/praxisvoice/api/mcp"
	"github.com/papercomputeco/praxisvoice/pkg/callflow"
	"github.com/papercomputeco/praxisvoice/pkg/calllog"
)

// Server is the inspection API server of praxisvoice.
type Server struct {
	config Config
	engine *callflow.Engine
	store  calllog.Store
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The store is injected to allow sharing with the voice server when both
// run in one process.
func NewServer(config Config, engine *callflow.Engine, store calllog.Store, logger *slog.Logger) (*Server, error) {
	if engine == nil {
		return nil, errors.New("dialog engine is required")
	}
	if store == nil {
		return nil, errors.New("call log store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		engine: engine,
		store:  store,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/calls", s.handleListCalls)
	app.Get("/v1/calls/:callId", s.handleGetCall)
	app.Post("/v1/dialog/classify", s.handleClassify)
	app.Post("/v1/dialog/turn", s.handleTurn)

	if !config.DisableMCP {
		mcpServer, err := mcp.NewServer(mcp.Config{
			Engine: engine,
			Store:  store,
			Logger: logger,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create MCP server: %w", err)
		}
		app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"mcp", !s.config.DisableMCP,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server", "listen", listener.Addr().String())
	return s.app.Listener(listener)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
