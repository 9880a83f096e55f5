// Package watcher re-triggers project analysis when source files change.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when Options.Debounce is zero.
const DefaultDebounce = 300 * time.Millisecond

// Options configures a file watcher.
type Options struct {
	// Extensions to monitor, with leading dot. Matched case-insensitively.
	Extensions []string

	// Excluded reports whether a slash-separated path relative to the root
	// is filtered out. Excluded directories are never watched.
	Excluded func(relPath string) bool

	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration

	Logger *slog.Logger
}

type fileWatcher struct {
	watcher      *fsnotify.Watcher
	root         string
	extensions   map[string]bool
	excluded     func(string) bool
	debounceTime time.Duration
	logger       *slog.Logger

	callback func(paths []string)
	ctx      context.Context
	cancel   context.CancelFunc

	paused   bool
	pausedMu sync.RWMutex

	accumulated   map[string]bool
	accumulatedMu sync.Mutex

	debounceTimer *time.Timer
	timerMu       sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// NewFileWatcher creates a watcher for every directory under root that the
// exclusion filter lets through.
func NewFileWatcher(root string, opts Options) (FileWatcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root is not a directory: %s", root)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	fw := &fileWatcher{
		watcher:      w,
		root:         root,
		extensions:   make(map[string]bool, len(opts.Extensions)),
		excluded:     opts.Excluded,
		debounceTime: opts.Debounce,
		logger:       opts.Logger,
		accumulated:  make(map[string]bool),
		doneCh:       make(chan struct{}),
	}
	for _, ext := range opts.Extensions {
		fw.extensions[strings.ToLower(ext)] = true
	}
	if fw.debounceTime <= 0 {
		fw.debounceTime = DefaultDebounce
	}
	if fw.logger == nil {
		fw.logger = slog.Default()
	}

	if err := fw.addDirectoriesRecursively(root); err != nil {
		w.Close()
		return nil, err
	}
	return fw, nil
}

// Start begins watching for file changes.
func (fw *fileWatcher) Start(ctx context.Context, callback func(paths []string)) error {
	if callback == nil {
		return fmt.Errorf("callback is required")
	}

	fw.callback = callback
	fw.ctx, fw.cancel = context.WithCancel(ctx)

	go fw.watch()
	return nil
}

// Stop stops the file watcher.
func (fw *fileWatcher) Stop() error {
	var err error
	fw.stopOnce.Do(func() {
		if fw.cancel != nil {
			fw.cancel()
			<-fw.doneCh
		} else {
			close(fw.doneCh)
		}
		err = fw.watcher.Close()
	})
	return err
}

// Pause stops firing callbacks but continues accumulating events.
func (fw *fileWatcher) Pause() {
	fw.pausedMu.Lock()
	defer fw.pausedMu.Unlock()
	fw.paused = true
}

// Resume resumes firing callbacks and flushes anything accumulated while
// paused.
func (fw *fileWatcher) Resume() {
	fw.pausedMu.Lock()
	wasPaused := fw.paused
	fw.paused = false
	fw.pausedMu.Unlock()

	if wasPaused {
		fw.flush()
	}
}

func (fw *fileWatcher) watch() {
	defer close(fw.doneCh)

	fireCh := make(chan struct{}, 1)

	for {
		select {
		case <-fw.ctx.Done():
			fw.stopDebounceTimer()
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := fw.addDirectoriesRecursively(event.Name); err != nil {
						fw.logger.Warn("failed to watch new directory",
							slog.String("path", event.Name),
							slog.String("error", err.Error()),
						)
					}
				}
			}

			if !fw.shouldProcessEvent(event) {
				continue
			}

			fw.accumulatedMu.Lock()
			fw.accumulated[event.Name] = true
			fw.accumulatedMu.Unlock()

			fw.resetDebounceTimer(fireCh)

		case <-fireCh:
			fw.pausedMu.RLock()
			paused := fw.paused
			fw.pausedMu.RUnlock()
			if !paused {
				fw.flush()
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn("file watcher error", slog.String("error", err.Error()))
		}
	}
}

// flush delivers the accumulated paths, sorted, if there are any.
func (fw *fileWatcher) flush() {
	fw.accumulatedMu.Lock()
	if len(fw.accumulated) == 0 {
		fw.accumulatedMu.Unlock()
		return
	}
	paths := make([]string, 0, len(fw.accumulated))
	for p := range fw.accumulated {
		paths = append(paths, p)
	}
	fw.accumulated = make(map[string]bool)
	fw.accumulatedMu.Unlock()

	sort.Strings(paths)
	if fw.callback != nil {
		fw.callback(paths)
	}
}

func (fw *fileWatcher) resetDebounceTimer(fireCh chan struct{}) {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debounceTime, func() {
		select {
		case fireCh <- struct{}{}:
		default:
		}
	})
}

func (fw *fileWatcher) stopDebounceTimer() {
	fw.timerMu.Lock()
	defer fw.timerMu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
		fw.debounceTimer = nil
	}
}

// shouldProcessEvent keeps write, create, remove and rename events on
// monitored extensions outside excluded paths.
func (fw *fileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !fw.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return false
	}
	return !fw.isExcluded(event.Name)
}

func (fw *fileWatcher) isExcluded(path string) bool {
	if fw.excluded == nil {
		return false
	}
	rel, err := filepath.Rel(fw.root, path)
	if err != nil || rel == "." {
		return false
	}
	return fw.excluded(filepath.ToSlash(rel))
}

func (fw *fileWatcher) addDirectoriesRecursively(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			fw.logger.Warn("error accessing path",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if fw.isExcluded(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			fw.logger.Warn("failed to watch directory",
				slog.String("path", path),
				slog.String("error", err.Error()),
			)
		}
		return nil
	})
}
