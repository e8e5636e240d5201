package main

import (
	"context"
	"log/slog"
	"time"

	"folio/internal/logfields"
	"folio/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Debounce time.Duration `help:"Quiet period before a rebuild." default:"300ms"`
}

func (c *WatchCmd) Run(ctx context.Context, root *CLI) error {
	rebuild := func(ctx context.Context) error {
		// Reload so edits to site.yaml apply without a restart.
		site, err := loadSite(root.Config)
		if err != nil {
			return err
		}
		_, err = runBuild(ctx, site)
		return err
	}

	site, err := loadSite(root.Config)
	if err != nil {
		return err
	}
	if err := rebuild(ctx); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	w, err := watch.New([]string{site.ContentDir, site.LayoutDir, site.StaticDir, root.Config}, rebuild, c.Debounce)
	if err != nil {
		return err
	}
	slog.Info("Watching for changes", logfields.Count(w.Watched()))
	return w.Run(ctx)
}
