package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/codecontext/internal/analysis"
	"github.com/mvp-joe/codecontext/internal/config"
	"github.com/mvp-joe/codecontext/internal/extract"
	"github.com/mvp-joe/codecontext/internal/report"
)

// ExtractResponse is the result of the extract_declarations tool.
type ExtractResponse struct {
	Filename     string                `json:"filename,omitempty"`
	Declarations []extract.Declaration `json:"declarations"`
	Total        int                   `json:"total"`
	Cached       bool                  `json:"cached"`
}

// DialectInfo describes one registry entry for list_dialects.
type DialectInfo struct {
	Position int         `json:"position"`
	Tag      extract.Tag `json:"tag"`
	Gate     string      `json:"gate"`
	Pattern  string      `json:"pattern"`
}

// AddExtractDeclarationsTool registers the extract_declarations tool. The
// tool analyzes text supplied by the caller and never touches the
// filesystem.
func AddExtractDeclarationsTool(s *server.MCPServer, svc *analysis.Service) {
	tool := mcp.NewTool(
		"extract_declarations",
		mcp.WithDescription("Extract exported functions, components, hooks, Vue members and type declarations from JavaScript/TypeScript/Vue source text, each with its parameters and nearest preceding comment."),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Full source text of one file")),
		mcp.WithString("filename",
			mcp.Description("Optional file name, used as the cache key and echoed back")),
		mcp.WithArray("tags",
			mcp.Description("Optional dialect tags to keep (see list_dialects)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createExtractHandler(svc))
}

func createExtractHandler(svc *analysis.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req ExtractRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Text == "" {
			return mcp.NewToolResultError("text parameter is required"), nil
		}
		tags, err := parseTags(svc.Analyzer().Registry(), req.Tags)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var (
			decls  []extract.Declaration
			cached bool
		)
		if req.Filename != "" {
			decls, cached = svc.AnalyzeText(req.Filename, []byte(req.Text))
		} else {
			decls = svc.Analyzer().AnalyzeFile(req.Text)
		}
		decls = filterByTags(decls, tags)
		if decls == nil {
			decls = []extract.Declaration{}
		}

		return marshalToolResponse(&ExtractResponse{
			Filename:     req.Filename,
			Declarations: decls,
			Total:        len(decls),
			Cached:       cached,
		})
	}
}

// AddAnalyzeProjectTool registers the analyze_project tool, which runs the
// full pipeline over root or a directory below it.
func AddAnalyzeProjectTool(s *server.MCPServer, root string, cfg *config.Config, svc *analysis.Service, logger *slog.Logger) {
	tool := mcp.NewTool(
		"analyze_project",
		mcp.WithDescription("Build the project context report: directory tree, package.json dependencies, framework notes and per-file declarations."),
		mcp.WithString("path",
			mcp.Description("Optional directory relative to the project root (default: the root)")),
		mcp.WithArray("tags",
			mcp.Description("Optional dialect tags to keep in the per-file declarations")),
		mcp.WithBoolean("include_tree",
			mcp.Description("Include the directory tree (default: true)")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createAnalyzeHandler(root, cfg, svc, logger))
}

func createAnalyzeHandler(root string, cfg *config.Config, svc *analysis.Service, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req AnalyzeRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		dir, err := resolveWithinRoot(root, req.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		tags, err := parseTags(svc.Analyzer().Registry(), req.Tags)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		runCfg := *cfg
		if req.IncludeTree != nil {
			runCfg.Output.Tree = *req.IncludeTree
		}

		runner, err := analysis.NewRunner(dir, &runCfg, svc, nil, logger)
		if err != nil {
			return nil, err
		}
		rep, _, err := runner.Run(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if len(tags) > 0 {
			applyTagFilter(rep, tags)
		}
		return marshalToolResponse(rep)
	}
}

// AddListDialectsTool registers the list_dialects tool.
func AddListDialectsTool(s *server.MCPServer, registry extract.Registry) {
	tool := mcp.NewTool(
		"list_dialects",
		mcp.WithDescription("List the recognized declaration dialects in the order they are applied, with their gate and extraction patterns."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)
	s.AddTool(tool, createListDialectsHandler(registry))
}

func createListDialectsHandler(registry extract.Registry) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return marshalToolResponse(Dialects(registry))
	}
}

// Dialects describes the registry entries in order.
func Dialects(registry extract.Registry) []DialectInfo {
	specs := registry.Specs()
	out := make([]DialectInfo, len(specs))
	for i, s := range specs {
		out[i] = DialectInfo{Position: i + 1, Tag: s.Tag}
		if s.Gate != nil {
			out[i].Gate = s.Gate.String()
		}
		if s.Pattern != nil {
			out[i].Pattern = s.Pattern.String()
		}
	}
	return out
}

// resolveWithinRoot joins rel onto root and rejects results outside root.
func resolveWithinRoot(root, rel string) (string, error) {
	if rel == "" || rel == "." {
		return root, nil
	}
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("path must be relative to the project root: %s", rel)
	}
	dir := filepath.Join(root, filepath.FromSlash(rel))
	within, err := filepath.Rel(root, dir)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is outside project root: %s", rel)
	}
	return dir, nil
}

// applyTagFilter reduces every file's declarations to tags and recomputes
// the totals.
func applyTagFilter(rep *report.Report, tags []extract.Tag) {
	totals := report.Totals{Files: rep.Totals.Files, ByTag: make(map[extract.Tag]int)}
	for i := range rep.Files {
		rep.Files[i].Declarations = filterByTags(rep.Files[i].Declarations, tags)
		totals.Declarations += len(rep.Files[i].Declarations)
		for tag, n := range extract.CountByTag(rep.Files[i].Declarations) {
			totals.ByTag[tag] += n
		}
	}
	rep.Totals = totals
}
