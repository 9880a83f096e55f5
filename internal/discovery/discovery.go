package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ErrNotDirectory indicates the walk root is not a directory.
var ErrNotDirectory = errors.New("root is not a directory")

// File is a discovered source file.
type File struct {
	Path    string // absolute or root-joined path
	RelPath string // slash-separated path relative to the root
	Size    int64
}

// Options configures a Walker.
type Options struct {
	Extensions  []string // allow-list, leading dot; matched case-insensitively
	Exclude     []string // any path containing one of these substrings is skipped
	Ignore      []string // glob patterns relative to the root
	MaxFileSize int64    // 0 means unlimited
}

// Unreadable is an entry below the root that could not be read.
type Unreadable struct {
	RelPath string
	Err     error
}

// Stats summarizes one walk.
type Stats struct {
	Matched        int
	SkippedExclude int
	SkippedIgnore  int
	SkippedSize    int
	Unreadable     []Unreadable
}

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Walker discovers source files under a root directory.
type Walker struct {
	rootDir        string
	extensions     map[string]bool
	exclude        []string
	ignorePatterns []compiledPattern
	maxFileSize    int64
	walkDir        func(root string, fn fs.WalkDirFunc) error
}

// NewWalker creates a walker for rootDir. It fails if an ignore pattern does
// not compile.
func NewWalker(rootDir string, opts Options) (*Walker, error) {
	w := &Walker{
		rootDir:     rootDir,
		extensions:  make(map[string]bool, len(opts.Extensions)),
		maxFileSize: opts.MaxFileSize,
		walkDir:     filepath.WalkDir,
	}

	for _, ext := range opts.Extensions {
		w.extensions[strings.ToLower(ext)] = true
	}

	for _, ex := range opts.Exclude {
		if ex = strings.TrimSpace(ex); ex != "" {
			w.exclude = append(w.exclude, filepath.ToSlash(ex))
		}
	}

	for _, pattern := range opts.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		w.ignorePatterns = append(w.ignorePatterns, compiledPattern{pattern: pattern, glob: g})
	}

	return w, nil
}

// Root returns the directory being walked.
func (w *Walker) Root() string {
	return w.rootDir
}

// Walk returns every matching file in lexical relative-path order.
// Excluded and ignored directories are not descended into. Entries below the
// root that cannot be read are recorded in Stats.Unreadable and skipped; only
// an unreadable root fails the walk.
func (w *Walker) Walk(ctx context.Context) ([]File, Stats, error) {
	var stats Stats

	info, err := os.Stat(w.rootDir)
	if err != nil {
		return nil, stats, fmt.Errorf("failed to stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, stats, fmt.Errorf("%w: %s", ErrNotDirectory, w.rootDir)
	}

	var files []File
	err = w.walkDir(w.rootDir, func(path string, d fs.DirEntry, walkErr error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if path == w.rootDir {
			return walkErr
		}

		relPath, err := filepath.Rel(w.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if d == nil {
			stats.Unreadable = append(stats.Unreadable, Unreadable{RelPath: relPath, Err: walkErr})
			return nil
		}

		if w.isExcluded(relPath) {
			stats.SkippedExclude++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if w.shouldIgnore(relPath) {
			stats.SkippedIgnore++
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if walkErr != nil {
			stats.Unreadable = append(stats.Unreadable, Unreadable{RelPath: relPath, Err: walkErr})
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !w.Accepts(relPath) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			stats.Unreadable = append(stats.Unreadable, Unreadable{RelPath: relPath, Err: err})
			return nil
		}
		if w.maxFileSize > 0 && fi.Size() > w.maxFileSize {
			stats.SkippedSize++
			return nil
		}

		files = append(files, File{Path: path, RelPath: relPath, Size: fi.Size()})
		return nil
	})
	if err != nil {
		return nil, stats, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	stats.Matched = len(files)
	return files, stats, nil
}

// Accepts reports whether a relative path has a recognized extension.
func (w *Walker) Accepts(relPath string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(relPath))]
}

// Excluded reports whether a relative path is filtered out by the exclude
// substrings or the ignore patterns.
func (w *Walker) Excluded(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	return w.isExcluded(relPath) || w.shouldIgnore(relPath)
}

func (w *Walker) isExcluded(relPath string) bool {
	for _, ex := range w.exclude {
		if strings.Contains(relPath, ex) {
			return true
		}
	}
	return false
}

// shouldIgnore checks if a path matches any ignore pattern.
func (w *Walker) shouldIgnore(relPath string) bool {
	if w.matchesAnyPattern(relPath) {
		return true
	}

	// A directory such as "legacy" should match the pattern "legacy/**".
	return w.matchesAnyPattern(relPath + "/**")
}

// matchesAnyPattern checks if a path matches any ignore pattern.
func (w *Walker) matchesAnyPattern(path string) bool {
	for _, cp := range w.ignorePatterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Files in the root have no slash, so "**/*.min.js" is retried without
	// its "**/" prefix to let it match "app.min.js".
	if !strings.Contains(path, "/") {
		for _, cp := range w.ignorePatterns {
			if strings.HasPrefix(cp.pattern, "**/") {
				simplified := strings.TrimPrefix(cp.pattern, "**/")
				if g, err := glob.Compile(simplified, '/'); err == nil && g.Match(path) {
					return true
				}
			}
		}
	}

	return false
}
