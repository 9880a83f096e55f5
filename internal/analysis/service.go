package analysis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/maypok86/otter"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/codecontext/internal/discovery"
	"github.com/mvp-joe/codecontext/internal/extract"
)

// FileResult is the outcome of analyzing one file. Err is set when the file
// could not be read; Declarations is then empty.
type FileResult struct {
	File         discovery.File
	Declarations []extract.Declaration
	Err          error
	Cached       bool
}

// Options configures a Service.
type Options struct {
	Workers       int // concurrent analyses; values below 1 mean 1
	CacheCapacity int // 0 disables the result cache
	Logger        *slog.Logger
}

// Service analyzes files concurrently and caches results by path and
// content hash, so unchanged files are not re-scanned across runs.
type Service struct {
	analyzer *extract.Analyzer
	cache    *otter.Cache[string, []extract.Declaration]
	workers  int
	logger   *slog.Logger
	readFile func(string) ([]byte, error)

	hits   atomic.Int64
	misses atomic.Int64
}

// NewService creates a service around analyzer.
func NewService(analyzer *extract.Analyzer, opts Options) (*Service, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer is required")
	}
	s := &Service{
		analyzer: analyzer,
		workers:  opts.Workers,
		logger:   opts.Logger,
		readFile: os.ReadFile,
	}
	if s.workers < 1 {
		s.workers = 1
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	if opts.CacheCapacity > 0 {
		cache, err := otter.MustBuilder[string, []extract.Declaration](opts.CacheCapacity).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = &cache
	}
	return s, nil
}

// Analyzer returns the analyzer the service applies.
func (s *Service) Analyzer() *extract.Analyzer {
	return s.analyzer
}

// Close releases the result cache.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// CacheStats returns the number of cache hits and misses so far.
func (s *Service) CacheStats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}

// AnalyzeText analyzes text that belongs to path, consulting the cache.
// The returned bool reports a cache hit.
func (s *Service) AnalyzeText(path string, text []byte) ([]extract.Declaration, bool) {
	if s.cache == nil {
		return s.analyzer.AnalyzeFile(string(text)), false
	}

	key := cacheKey(path, text)
	if decls, ok := s.cache.Get(key); ok {
		s.hits.Add(1)
		return decls, true
	}
	s.misses.Add(1)

	decls := s.analyzer.AnalyzeFile(string(text))
	s.cache.Set(key, decls)
	return decls, false
}

// AnalyzeFiles reads and analyzes files with at most Workers running at
// once. Results are in the order of files regardless of completion order.
// A file that cannot be read yields zero declarations and a non-nil Err; it
// never fails the call. Only context cancellation returns an error.
func (s *Service) AnalyzeFiles(ctx context.Context, files []discovery.File, progress ProgressReporter) ([]FileResult, error) {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	results := make([]FileResult, len(files))

	var progressMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res := FileResult{File: f}
			data, err := s.readFile(f.Path)
			if err != nil {
				s.logger.Warn("failed to read file",
					slog.String("path", f.RelPath),
					slog.String("error", err.Error()),
				)
				res.Err = err
			} else {
				res.Declarations, res.Cached = s.AnalyzeText(f.Path, data)
			}
			results[i] = res

			progressMu.Lock()
			progress.OnFileProcessed(f.RelPath)
			progressMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func cacheKey(path string, content []byte) string {
	sum := sha256.Sum256(content)
	return path + "\x00" + hex.EncodeToString(sum[:])
}
