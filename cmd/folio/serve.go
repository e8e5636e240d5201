package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"folio/internal/logfields"
	"folio/internal/server"
	"folio/internal/watch"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port     int           `short:"p" help:"Port for the preview server." default:"1313"`
	Debounce time.Duration `help:"Quiet period before a rebuild." default:"300ms"`
}

func (c *ServeCmd) Run(ctx context.Context, root *CLI) error {
	site, err := loadSite(root.Config)
	if err != nil {
		return err
	}
	if _, err := runBuild(ctx, site); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	hub := server.NewHub()
	rebuild := func(ctx context.Context) error {
		next, err := loadSite(root.Config)
		if err != nil {
			return err
		}
		if next.OutputDir != site.OutputDir {
			slog.Warn("output_dir changed; restart serve to preview it", logfields.Output(next.OutputDir))
			next.OutputDir = site.OutputDir
		}
		if _, err := runBuild(ctx, next); err != nil {
			return err
		}
		hub.Broadcast(server.ReloadMessage)
		return nil
	}

	w, err := watch.New([]string{site.ContentDir, site.LayoutDir, site.StaticDir, root.Config}, rebuild, c.Debounce)
	if err != nil {
		return err
	}

	// BuildSite validates its own copy; the handler needs the normalized base path.
	if err := site.Validate(); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(gctx) })
	g.Go(func() error {
		return server.Run(gctx, fmt.Sprintf(":%d", c.Port), server.Handler(site.OutputDir, site.BasePath, hub))
	})
	return g.Wait()
}
