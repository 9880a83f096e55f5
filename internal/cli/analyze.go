package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codecontext/internal/analysis"
	"github.com/mvp-joe/codecontext/internal/config"
	"github.com/mvp-joe/codecontext/internal/report"
	"github.com/mvp-joe/codecontext/internal/watcher"
)

// analyzeOptions holds the analyze flags. Zero values leave the loaded
// configuration untouched.
type analyzeOptions struct {
	format     string
	output     string
	workers    int
	exclude    []string
	extensions []string
	noTree     bool
	treeDepth  int
	noDeps     bool
	quiet      bool
	watch      bool
}

var analyzeOpts analyzeOptions

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Print the project context report for a directory",
	Long: `Analyze walks the directory (default: the current directory), reads every
package.json, and extracts declarations from each recognized source file.

Examples:
  # Report on the current directory
  codecontext analyze

  # JSON report for another project, written to a file
  codecontext analyze ../web --format json --output context.json

  # Re-render the report whenever a source file changes
  codecontext analyze --watch --output CONTEXT.md
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	addAnalyzeFlags(analyzeCmd)
}

func addAnalyzeFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&analyzeOpts.format, "format", "f", "", "Report format: text, json or yaml")
	f.StringVarP(&analyzeOpts.output, "output", "o", "", "Write the report to a file instead of stdout")
	f.IntVar(&analyzeOpts.workers, "workers", 0, "Number of files analyzed concurrently")
	f.StringSliceVar(&analyzeOpts.exclude, "exclude", nil, "Additional path substrings to exclude")
	f.StringSliceVar(&analyzeOpts.extensions, "ext", nil, "Replace the recognized file extensions")
	f.BoolVar(&analyzeOpts.noTree, "no-tree", false, "Omit the directory tree")
	f.IntVar(&analyzeOpts.treeDepth, "tree-depth", 0, "Levels shown in the directory tree (0 keeps output.tree_depth)")
	f.BoolVar(&analyzeOpts.noDeps, "no-deps", false, "Omit package.json dependencies")
	f.BoolVarP(&analyzeOpts.quiet, "quiet", "q", false, "Disable progress output")
	f.BoolVarP(&analyzeOpts.watch, "watch", "w", false, "Watch for file changes and re-render the report")
}

// apply overlays the flags onto cfg and re-validates it.
func (o analyzeOptions) apply(cfg *config.Config) error {
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.output != "" {
		cfg.Output.Path = o.output
	}
	if o.workers != 0 {
		cfg.Analysis.Workers = o.workers
	}
	cfg.Scan.Exclude = append(cfg.Scan.Exclude, o.exclude...)
	if len(o.extensions) > 0 {
		cfg.Scan.Extensions = config.NormalizeExtensions(o.extensions)
	}
	if o.noTree {
		cfg.Output.Tree = false
	}
	if o.treeDepth != 0 {
		cfg.Output.TreeDepth = o.treeDepth
	}
	if o.noDeps {
		cfg.Output.DependsList = false
	}
	return config.Validate(cfg)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	root, err := resolveRoot(args)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := analyzeOpts.apply(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := newLogger(verbose)
	var progress analysis.ProgressReporter = &analysis.NoOpProgressReporter{}
	if !analyzeOpts.quiet {
		progress = NewCLIProgressReporter(cmd.ErrOrStderr())
	}

	return executeAnalyze(ctx, root, cfg, analyzeOpts.watch, progress, cmd.OutOrStdout(), logger)
}

// executeAnalyze runs the pipeline once and writes the report, then keeps
// re-running on changes when watch is set.
func executeAnalyze(ctx context.Context, root string, cfg *config.Config, watch bool, progress analysis.ProgressReporter, stdout io.Writer, logger *slog.Logger) error {
	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}
	defer svc.Close()

	runner, err := analysis.NewRunner(root, cfg, svc, progress, logger)
	if err != nil {
		return err
	}

	if err := renderOnce(ctx, runner, cfg, stdout); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	return watchAndRender(ctx, runner, cfg, stdout, logger)
}

func renderOnce(ctx context.Context, runner *analysis.Runner, cfg *config.Config, stdout io.Writer) error {
	rep, _, err := runner.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("analysis cancelled")
		}
		return fmt.Errorf("analysis failed: %w", err)
	}
	return writeReport(rep, cfg.Output, stdout)
}

// writeReport renders rep into the configured destination. A file is
// written whole so readers never observe a partial report.
func writeReport(rep *report.Report, out config.OutputConfig, stdout io.Writer) error {
	if out.Path == "" {
		return report.Write(stdout, rep, out.Format)
	}

	var buf bytes.Buffer
	if err := report.Write(&buf, rep, out.Format); err != nil {
		return err
	}
	tmp := out.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmp, out.Path); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func watchAndRender(ctx context.Context, runner *analysis.Runner, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	fw, err := watcher.NewFileWatcher(runner.Root(), watcher.Options{
		Extensions: cfg.Scan.Extensions,
		Excluded:   runner.Walker().Excluded,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer fw.Stop()

	changed := make(chan []string, 1)
	if err := fw.Start(ctx, func(paths []string) {
		select {
		case changed <- paths:
		default:
		}
	}); err != nil {
		return err
	}
	logger.Info("watching for changes", slog.String("root", runner.Root()))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watch mode stopped")
			return nil
		case paths := <-changed:
			fw.Pause()
			logger.Info("change detected, re-analyzing", slog.Int("files", len(paths)))
			if err := renderOnce(ctx, runner, cfg, stdout); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("re-analysis failed", slog.String("error", err.Error()))
			}
			fw.Resume()
		}
	}
}
