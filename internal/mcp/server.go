// Package mcp exposes declaration extraction and project analysis as MCP
// tools served over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/codecontext/internal/analysis"
	"github.com/mvp-joe/codecontext/internal/config"
)

// ServerName is the MCP implementation name announced to clients.
const ServerName = "codecontext"

// Server manages the MCP server lifecycle.
type Server struct {
	root   string
	svc    *analysis.Service
	logger *slog.Logger
	mcp    *server.MCPServer
}

// NewServer creates an MCP server for the project at root. The analysis
// service is shared by every tool call, so repeated calls over unchanged
// files are served from its cache.
func NewServer(root string, cfg *config.Config, svc *analysis.Service, version string, logger *slog.Logger) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("analysis service is required")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
	)

	AddExtractDeclarationsTool(mcpServer, svc)
	AddAnalyzeProjectTool(mcpServer, abs, cfg, svc, logger)
	AddListDialectsTool(mcpServer, svc.Analyzer().Registry())

	return &Server{
		root:   abs,
		svc:    svc,
		logger: logger,
		mcp:    mcpServer,
	}, nil
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve runs the server on stdio and blocks until a shutdown signal, a
// server error or cancellation of ctx.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting MCP server on stdio", slog.String("root", s.root))
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.logger.Info("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the analysis cache.
func (s *Server) Close() error {
	s.svc.Close()
	return nil
}
