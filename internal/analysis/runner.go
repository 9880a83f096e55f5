package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mvp-joe/codecontext/internal/config"
	"github.com/mvp-joe/codecontext/internal/discovery"
	"github.com/mvp-joe/codecontext/internal/extract"
	"github.com/mvp-joe/codecontext/internal/frameworks"
	"github.com/mvp-joe/codecontext/internal/manifest"
	"github.com/mvp-joe/codecontext/internal/report"
	"github.com/mvp-joe/codecontext/internal/tree"
)

// Stats summarizes one run.
type Stats struct {
	Files           int
	Declarations    int
	Projects        int
	Problems        int
	CacheHits       int
	DurationSeconds float64
}

// Runner executes the full pipeline for one root directory: discovery,
// manifest reading, per-file analysis, framework hints and report assembly.
type Runner struct {
	root     string
	cfg      *config.Config
	walker   *discovery.Walker
	service  *Service
	progress ProgressReporter
	logger   *slog.Logger
}

// NewRunner creates a runner for root. The service is shared so its cache
// survives across runs in watch mode.
func NewRunner(root string, cfg *config.Config, service *Service, progress ProgressReporter, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if service == nil {
		return nil, fmt.Errorf("analysis service is required")
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root: %w", err)
	}

	walker, err := discovery.NewWalker(abs, discovery.Options{
		Extensions:  cfg.Scan.Extensions,
		Exclude:     cfg.Scan.Exclude,
		Ignore:      cfg.Scan.Ignore,
		MaxFileSize: cfg.Scan.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	return &Runner{
		root:     abs,
		cfg:      cfg,
		walker:   walker,
		service:  service,
		progress: progress,
		logger:   logger,
	}, nil
}

// Root returns the absolute root directory.
func (r *Runner) Root() string {
	return r.root
}

// Walker returns the walker used for discovery.
func (r *Runner) Walker() *discovery.Walker {
	return r.walker
}

// Run executes the pipeline and returns the report. Unreadable files and
// directories and malformed manifests are recorded as report problems; only
// a failure to enumerate the root at all is returned as an error.
func (r *Runner) Run(ctx context.Context) (*report.Report, *Stats, error) {
	start := time.Now()

	r.progress.OnDiscoveryStart()
	files, walkStats, err := r.walker.Walk(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover files: %w", err)
	}
	r.logger.Debug("discovery complete",
		slog.Int("files", walkStats.Matched),
		slog.Int("excluded", walkStats.SkippedExclude),
		slog.Int("ignored", walkStats.SkippedIgnore),
		slog.Int("too_large", walkStats.SkippedSize),
	)

	rep := &report.Report{Root: filepath.Base(r.root)}
	for _, u := range walkStats.Unreadable {
		r.logger.Warn("skipping unreadable path",
			slog.String("path", u.RelPath),
			slog.String("error", u.Err.Error()),
		)
		addProblem(rep, report.ProblemUnreadablePath, u.RelPath, u.Err)
	}

	var projects []manifest.Project
	if r.cfg.Output.DependsList {
		var problems []manifest.Problem
		projects, problems, err = manifest.Discover(ctx, r.root, r.walker.Excluded, r.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to discover manifests: %w", err)
		}
		rep.Projects = projects
		for _, p := range problems {
			kind := report.ProblemUnreadablePath
			if errors.Is(p.Err, manifest.ErrMalformed) {
				kind = report.ProblemMalformedManifest
			}
			addProblem(rep, kind, p.Path, p.Err)
		}
	}
	r.progress.OnDiscoveryComplete(len(files), len(projects))

	r.progress.OnFileProcessingStart(len(files))
	results, err := r.service.AnalyzeFiles(ctx, files, r.progress)
	if err != nil {
		return nil, nil, err
	}

	rep.Files, rep.Totals = r.collect(results, rep)
	rep.Hints = frameworks.Detect(manifest.Merge(projects), fileDeclarations(rep.Files))

	if r.cfg.Output.Tree {
		relPaths := make([]string, len(files))
		for i, f := range files {
			relPaths[i] = f.RelPath
		}
		rep.Tree = tree.RenderDepth(rep.Root, relPaths, r.cfg.Output.TreeDepth)
	}

	stats := &Stats{
		Files:           rep.Totals.Files,
		Declarations:    rep.Totals.Declarations,
		Projects:        len(rep.Projects),
		Problems:        len(rep.Problems),
		DurationSeconds: time.Since(start).Seconds(),
	}
	for _, res := range results {
		if res.Cached {
			stats.CacheHits++
		}
	}
	r.progress.OnComplete(stats)
	return rep, stats, nil
}

// addProblem records a problem unless the same kind was already recorded for
// the path. The file walk and the manifest walk can both fail on one directory.
func addProblem(rep *report.Report, kind, path string, err error) {
	for _, p := range rep.Problems {
		if p.Kind == kind && p.Path == path {
			return
		}
	}
	rep.Problems = append(rep.Problems, report.Problem{Kind: kind, Path: path, Message: err.Error()})
}

func (r *Runner) collect(results []FileResult, rep *report.Report) ([]report.FileEntry, report.Totals) {
	entries := make([]report.FileEntry, 0, len(results))
	totals := report.Totals{ByTag: make(map[extract.Tag]int)}

	for _, res := range results {
		if res.Err != nil {
			rep.Problems = append(rep.Problems, report.Problem{
				Kind:    report.ProblemUnreadableFile,
				Path:    res.File.RelPath,
				Message: res.Err.Error(),
			})
		}
		entries = append(entries, report.FileEntry{Path: res.File.RelPath, Declarations: res.Declarations})
		totals.Files++
		totals.Declarations += len(res.Declarations)
		for tag, n := range extract.CountByTag(res.Declarations) {
			totals.ByTag[tag] += n
		}
	}
	return entries, totals
}

func fileDeclarations(entries []report.FileEntry) []frameworks.FileDeclarations {
	out := make([]frameworks.FileDeclarations, len(entries))
	for i, e := range entries {
		out[i] = frameworks.FileDeclarations{RelPath: e.Path, Declarations: e.Declarations}
	}
	return out
}
