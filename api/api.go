package api

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/creatormem/pkg/memory"
)

const (
	// UserMemoryPath is the route of the user memory endpoint.
	UserMemoryPath = "/api/user-memory"

	// MCPPath is the route the MCP server is mounted on.
	MCPPath = "/mcp"
)

// Server is the API server for managing and querying creatormem user records.
type Server struct {
	config  Config
	manager *memory.Manager
	logger  *slog.Logger
	app     *fiber.App
}

// NewServer creates a new API server around the Manager in config.
func NewServer(config Config) (*Server, error) {
	if config.Manager == nil {
		return nil, fmt.Errorf("%w: memory manager is required", memory.ErrNotConfigured)
	}
	if config.Logger == nil {
		return nil, errors.New("logger is required")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,

		// User IDs outlive the request as storage and lock keys.
		Immutable: true,
	})

	s := &Server{
		config:  config,
		manager: config.Manager,
		logger:  config.Logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.All(UserMemoryPath, s.handleUserMemory)

	if config.MCP != nil {
		app.All(MCPPath, adaptor.HTTPHandler(config.MCP.Handler()))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"mcp", s.config.MCP != nil,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
