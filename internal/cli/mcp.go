package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codecontext/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [path]",
	Short: "Serve declaration extraction and project analysis as MCP tools",
	Long: `Start an MCP (Model Context Protocol) server on stdio for the project at
path (default: the current directory).

Tools:
  extract_declarations  declarations of supplied source text
  analyze_project       the project context report, optionally for a sub-directory
  list_dialects         the recognized dialects in order

Logs go to stderr; stdout carries the protocol.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	logger := newLogger(verbose)
	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(root, cfg, svc, Version, logger)
	if err != nil {
		svc.Close()
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
