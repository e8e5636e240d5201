package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, paths []string) (<-chan struct{}, *Watcher) {
	t.Helper()
	builds := make(chan struct{}, 16)
	w, err := New(paths, func(context.Context) error {
		builds <- struct{}{}
		return nil
	}, 20*time.Millisecond)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watcher did not stop")
		}
	})
	return builds, w
}

func waitBuild(t *testing.T, builds <-chan struct{}) {
	t.Helper()
	select {
	case <-builds:
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild after change")
	}
}

func TestWatcher_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "blog"), 0o755))

	builds, w := startWatcher(t, []string{dir})
	assert.Equal(t, 2, w.Watched())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "blog", "post.md"), []byte("hi"), 0o644))
	waitBuild(t, builds)
}

func TestWatcher_WatchesNewDirectories(t *testing.T) {
	dir := t.TempDir()
	builds, _ := startWatcher(t, []string{dir})

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "notes"), 0o755))
	waitBuild(t, builds)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes", "a.md"), []byte("a"), 0o644))
	waitBuild(t, builds)
}

func TestWatcher_FileIsWatchedThroughParent(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("title: x"), 0o644))

	builds, w := startWatcher(t, []string{cfg, filepath.Join(dir, "missing")})
	assert.Equal(t, 1, w.Watched())

	require.NoError(t, os.WriteFile(cfg, []byte("title: y"), 0o644))
	waitBuild(t, builds)
}

func TestIgnored(t *testing.T) {
	for _, name := range []string{".post.md.swp", "post.md~", "4913.tmp", ".git"} {
		assert.True(t, ignored(name), name)
	}
	assert.False(t, ignored("post.md"))
}
