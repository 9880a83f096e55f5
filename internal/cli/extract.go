package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codecontext/internal/analysis"
	"github.com/mvp-joe/codecontext/internal/extract"
)

var (
	extractJSON bool
	extractTags []string
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Print the declarations found in the given files",
	Long: `Extract applies the dialect registry to each file and prints its
declarations, without walking a directory or reading package.json.

Examples:
  codecontext extract src/App.tsx src/hooks/useCart.ts
  codecontext extract --tag hookUsage --tag compositionApi src/*.js
`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "Output as JSON")
	extractCmd.Flags().StringSliceVar(&extractTags, "tag", nil, "Only run the given dialects (see 'codecontext dialects')")
}

// extractedFile is the JSON shape of one file's declarations.
type extractedFile struct {
	Path         string                `json:"path"`
	Declarations []extract.Declaration `json:"declarations"`
	Error        string                `json:"error,omitempty"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	registry := extract.DefaultRegistry()
	if len(extractTags) > 0 {
		tags := make([]extract.Tag, len(extractTags))
		for i, name := range extractTags {
			tags[i] = extract.Tag(name)
			if _, ok := registry.Lookup(tags[i]); !ok {
				return fmt.Errorf("unknown dialect %q", name)
			}
		}
		registry = registry.Only(tags...)
	}

	logger := newLogger(verbose)
	svc, err := analysis.NewService(extract.NewAnalyzer(registry), analysis.Options{Logger: logger})
	if err != nil {
		return err
	}
	defer svc.Close()

	return executeExtract(cmd.OutOrStdout(), svc, args, extractJSON, logger)
}

// executeExtract analyzes each path in order. Unreadable files are reported
// and skipped; the call fails afterwards if any file could not be read.
func executeExtract(w io.Writer, svc *analysis.Service, paths []string, asJSON bool, logger *slog.Logger) error {
	results := make([]extractedFile, 0, len(paths))
	failed := 0
	for _, p := range paths {
		entry := extractedFile{Path: filepath.ToSlash(p)}
		data, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("failed to read file",
				slog.String("path", p),
				slog.String("error", err.Error()),
			)
			entry.Error = err.Error()
			failed++
		} else {
			entry.Declarations, _ = svc.AnalyzeText(p, data)
		}
		if entry.Declarations == nil {
			entry.Declarations = []extract.Declaration{}
		}
		results = append(results, entry)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("failed to encode declarations: %w", err)
		}
	} else {
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "### %s\n\n", r.Path)
			switch {
			case r.Error != "":
				fmt.Fprintf(w, "(unreadable: %s)\n", r.Error)
			case len(r.Declarations) == 0:
				fmt.Fprintln(w, "(none)")
			default:
				for _, d := range r.Declarations {
					fmt.Fprintf(w, "- %s\n", d.String())
				}
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to read %d of %d files", failed, len(paths))
	}
	return nil
}
