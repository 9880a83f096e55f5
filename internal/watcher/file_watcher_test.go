package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileWatcher:
// - NewFileWatcher fails on a missing root
// - a single change fires the callback after the debounce
// - rapid changes are coalesced into one sorted, deduplicated batch
// - Pause accumulates and Resume flushes
// - new directories are watched while running
// - extension and exclusion filters drop events
// - Stop is idempotent and Start requires a callback

const testDebounce = 100 * time.Millisecond

func newTestWatcher(t *testing.T, root string, excluded func(string) bool) FileWatcher {
	t.Helper()
	w, err := NewFileWatcher(root, Options{
		Extensions: []string{".js", ".ts"},
		Excluded:   excluded,
		Debounce:   testDebounce,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Stop() })
	return w
}

// batchCollector forwards every callback invocation to a channel.
func batchCollector() (func([]string), chan []string) {
	ch := make(chan []string, 16)
	return func(paths []string) { ch <- paths }, ch
}

func waitBatch(t *testing.T, ch chan []string) []string {
	t.Helper()
	select {
	case b := <-ch:
		return b
	case <-time.After(3 * time.Second):
		t.Fatal("callback not called")
		return nil
	}
}

func assertNoBatch(t *testing.T, ch chan []string, wait time.Duration) {
	t.Helper()
	select {
	case b := <-ch:
		t.Fatalf("unexpected callback with %v", b)
	case <-time.After(wait):
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestNewFileWatcher_MissingRoot(t *testing.T) {
	t.Parallel()

	w, err := NewFileWatcher(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestNewFileWatcher_RootIsFile(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "a.js")
	write(t, file, "")

	_, err := NewFileWatcher(file, Options{})
	assert.Error(t, err)
}

func TestFileWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root, nil)
	cb, ch := batchCollector()
	require.NoError(t, w.Start(context.Background(), cb))

	file := filepath.Join(root, "index.js")
	write(t, file, "export const a = 1;")

	assert.Equal(t, []string{file}, waitBatch(t, ch))
}

func TestFileWatcher_CoalescesAndSorts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root, nil)
	cb, ch := batchCollector()
	require.NoError(t, w.Start(context.Background(), cb))

	b := filepath.Join(root, "b.ts")
	a := filepath.Join(root, "a.js")
	write(t, b, "1")
	write(t, a, "1")
	write(t, b, "2")

	assert.Equal(t, []string{a, b}, waitBatch(t, ch))
	assertNoBatch(t, ch, 3*testDebounce)
}

func TestFileWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root, nil)
	cb, ch := batchCollector()
	require.NoError(t, w.Start(context.Background(), cb))

	w.Pause()
	file := filepath.Join(root, "paused.js")
	write(t, file, "x")
	assertNoBatch(t, ch, 5*testDebounce)

	w.Resume()
	assert.Equal(t, []string{file}, waitBatch(t, ch))
}

func TestFileWatcher_NewDirectoryIsWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root, nil)
	cb, ch := batchCollector()
	require.NoError(t, w.Start(context.Background(), cb))

	dir := filepath.Join(root, "src")
	require.NoError(t, os.Mkdir(dir, 0755))
	// Give the event loop time to register the new directory.
	time.Sleep(3 * testDebounce)

	file := filepath.Join(dir, "app.ts")
	write(t, file, "export interface A {}")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case batch := <-ch:
			if assert.NotEmpty(t, batch) && batch[len(batch)-1] == file {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory not reported")
		}
	}
}

func TestFileWatcher_Filters(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	vendor := filepath.Join(root, "vendor")
	require.NoError(t, os.Mkdir(vendor, 0755))

	w := newTestWatcher(t, root, func(rel string) bool {
		return strings.HasPrefix(rel, "vendor") || strings.HasSuffix(rel, ".min.js")
	})
	cb, ch := batchCollector()
	require.NoError(t, w.Start(context.Background(), cb))

	write(t, filepath.Join(root, "README.md"), "# x")
	write(t, filepath.Join(root, "app.min.js"), "x")
	write(t, filepath.Join(vendor, "lib.js"), "x")
	assertNoBatch(t, ch, 5*testDebounce)

	kept := filepath.Join(root, "App.JS")
	write(t, kept, "x")
	assert.Equal(t, []string{kept}, waitBatch(t, ch))
}

func TestFileWatcher_StopAndCancel(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := newTestWatcher(t, root, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cb, ch := batchCollector()
	require.NoError(t, w.Start(ctx, cb))
	cancel()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = w.Stop()
		}()
	}
	wg.Wait()

	write(t, filepath.Join(root, "late.js"), "x")
	assertNoBatch(t, ch, 3*testDebounce)
}

func TestFileWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t, t.TempDir(), nil)
	assert.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}

func TestFileWatcher_StartRequiresCallback(t *testing.T) {
	t.Parallel()

	w := newTestWatcher(t, t.TempDir(), nil)
	assert.Error(t, w.Start(context.Background(), nil))
}
