// Package api provides the HTTP API server for reading and writing creatormem
// user records.
package api

import (
	"log/slog"

	"github.com/papercomputeco/creatormem/api/mcp"
	"github.com/papercomputeco/creatormem/pkg/memory"
)

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string

	// Manager serves every memory operation.
	Manager *memory.Manager

	// MCP optionally mounts an MCP server at /mcp.
	MCP *mcp.Server

	// Logger is the provided slog logger.
	Logger *slog.Logger
}
