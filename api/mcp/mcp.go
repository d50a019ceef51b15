// Package mcp provides an MCP (Model Context Protocol) server that exposes the
// creatormem memory operations as agent tools.
package mcp

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/creatormem/pkg/memory"
	"github.com/papercomputeco/creatormem/pkg/utils"
)

type Config struct {
	// Manager serves every memory tool.
	Manager *memory.Manager

	// Noop for empty MCP server
	Noop bool

	// Logger is the provided slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the memory tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "creatormem",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Manager == nil {
			return nil, fmt.Errorf("%w: memory manager is required", memory.ErrNotConfigured)
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        memoryGetToolName,
			Description: memoryGetDescription,
		}, s.handleGet)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        memoryAddFactToolName,
			Description: memoryAddFactDescription,
		}, s.handleAddFact)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        memoryEvolveProfileToolName,
			Description: memoryEvolveProfileDescription,
		}, s.handleEvolveProfile)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        memoryRecordInteractionToolName,
			Description: memoryRecordInteractionDescription,
		}, s.handleRecordInteraction)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        memoryListUsersToolName,
			Description: memoryListUsersDescription,
		}, s.handleListUsers)
	}

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
