// Package watch rebuilds a site whenever its sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"folio/internal/logfields"
)

// DefaultDebounce is how long the watcher waits for a burst of events to
// settle before rebuilding.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc runs one build. Errors are logged and do not stop watching.
type RebuildFunc func(ctx context.Context) error

// Watcher watches directories recursively and single files through their
// parent directory. Rebuilds run one at a time on the Run goroutine.
type Watcher struct {
	fsw      *fsnotify.Watcher
	rebuild  RebuildFunc
	debounce time.Duration
	watched  map[string]bool
}

// New starts watching paths. Paths that do not exist are ignored.
func New(paths []string, rebuild RebuildFunc, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w := &Watcher{fsw: fsw, rebuild: rebuild, debounce: debounce, watched: make(map[string]bool)}

	for _, p := range paths {
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			fsw.Close()
			return nil, fmt.Errorf("could not stat path %s: %w", p, err)
		}
		if info.IsDir() {
			if err := w.addTree(p); err != nil {
				fsw.Close()
				return nil, err
			}
			continue
		}
		// Editors often save by renaming a temp file over the original, so a
		// file is watched through its directory.
		w.add(filepath.Dir(p))
	}
	return w, nil
}

// Watched returns the number of directories being watched.
func (w *Watcher) Watched() int { return len(w.watched) }

func (w *Watcher) add(dir string) {
	dir = filepath.Clean(dir)
	if w.watched[dir] {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		slog.Warn("Failed to watch directory", logfields.Path(dir), logfields.Error(err))
		return
	}
	w.watched[dir] = true
	slog.Debug("Watching directory", logfields.Path(dir))
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && ignored(d.Name()) {
			return filepath.SkipDir
		}
		w.add(p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", root, err)
	}
	return nil
}

// Run handles events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := ""

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if ignored(filepath.Base(event.Name)) || !relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			slog.Debug("Change detected", logfields.Path(event.Name), logfields.Event(event.Op.String()))
			pending = event.Name
			timer.Reset(w.debounce)

		case <-timer.C:
			slog.Info("Rebuilding", logfields.Path(pending))
			start := time.Now()
			if err := w.rebuild(ctx); err != nil {
				slog.Error("Rebuild failed", logfields.Error(err))
			} else {
				slog.Info("Site rebuilt", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
			}
			pending = ""

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func relevant(e fsnotify.Event) bool {
	return e.Has(fsnotify.Write) || e.Has(fsnotify.Create) || e.Has(fsnotify.Remove) || e.Has(fsnotify.Rename)
}

// ignored matches hidden names and editor scratch files.
func ignored(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") ||
		strings.HasSuffix(name, ".tmp")
}
