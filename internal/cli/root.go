package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codecontext/internal/analysis"
	"github.com/mvp-joe/codecontext/internal/config"
	"github.com/mvp-joe/codecontext/internal/extract"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command. Without a subcommand it analyzes the
// given directory, like "codecontext analyze".
var rootCmd = &cobra.Command{
	Use:   "codecontext [path]",
	Short: "Summarize a JavaScript/TypeScript project for humans and LLMs",
	Long: `codecontext scans a JavaScript, TypeScript or Vue project and prints a
project context report: the directory tree, package.json dependencies,
framework notes, and the exported functions, components, hooks and types
found in every source file, each with its nearest preceding comment.`,
	Args:          cobra.MaximumNArgs(1),
	RunE:          runAnalyze,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <root>/.codecontext/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	addAnalyzeFlags(rootCmd)
}

// newLogger returns the process logger: text on stderr, Debug when verbose.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveRoot returns the absolute directory named by args, or the working
// directory when none is given.
func resolveRoot(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to resolve path: %w", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// loadConfig loads configuration for root, honoring --config.
func loadConfig(root string) (*config.Config, error) {
	var loader config.Loader
	if cfgFile != "" {
		loader = config.NewFileLoader(root, cfgFile)
	} else {
		loader = config.NewLoader(root)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// newService builds the analysis service for cfg over the default registry.
func newService(cfg *config.Config, logger *slog.Logger) (*analysis.Service, error) {
	return analysis.NewService(extract.NewAnalyzer(extract.DefaultRegistry()), analysis.Options{
		Workers:       cfg.Analysis.Workers,
		CacheCapacity: cfg.Analysis.CacheCapacity,
		Logger:        logger,
	})
}
