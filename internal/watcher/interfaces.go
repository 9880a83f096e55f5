package watcher

import "context"

// FileWatcher monitors project sources for changes with debouncing and
// pause/resume support.
type FileWatcher interface {
	// Start begins watching, calling callback with each debounced batch of
	// changed paths in sorted order.
	Start(ctx context.Context, callback func(paths []string)) error

	// Stop stops the watcher and releases its resources. Safe to call more
	// than once.
	Stop() error

	// Pause stops firing callbacks but keeps accumulating events.
	Pause()

	// Resume resumes firing callbacks. Events accumulated while paused are
	// delivered immediately.
	Resume()
}
