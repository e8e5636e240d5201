package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"folio/internal/builder"
	"folio/internal/config"
	"folio/internal/convert"
	"folio/internal/layout"
)

const defaultConfig = "site.yaml"

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output string `short:"o" help:"Override output_dir."`
	Unsafe bool   `help:"Keep raw HTML in converted documents."`
}

func (b *BuildCmd) Run(ctx context.Context, root *CLI) error {
	site, err := loadSite(root.Config)
	if err != nil {
		return err
	}
	if b.Output != "" {
		site.OutputDir = b.Output
	}
	if b.Unsafe {
		site.Unsafe = true
	}

	report, err := runBuild(ctx, site)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, site.OutputDir, report)
	return nil
}

// loadSite reads the configuration file. Relative directories are resolved
// against the file's directory. A missing site.yaml at the default location
// falls back to the defaults.
func loadSite(path string) (config.SiteConfig, error) {
	site, err := config.LoadSiteConfig(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfig {
		site = config.Default()
		config.LoadEnvFiles(".")
		config.ApplyEnv(&site)
		err = nil
	}
	if err != nil {
		return config.SiteConfig{}, err
	}

	base := filepath.Dir(path)
	for _, dir := range []*string{&site.ContentDir, &site.LayoutDir, &site.StaticDir, &site.OutputDir} {
		if *dir != "" && !filepath.IsAbs(*dir) {
			*dir = filepath.Join(base, *dir)
		}
	}
	return site, nil
}

func runBuild(ctx context.Context, site config.SiteConfig) (builder.Report, error) {
	tmpl, err := layout.Load(site.LayoutDir)
	if err != nil {
		return builder.Report{}, fmt.Errorf("%w: %w", builder.ErrLayout, err)
	}
	conv := convert.NewRegistry(convert.Options{Unsafe: site.Unsafe, External: site.Converters})
	return builder.BuildSite(ctx, site, tmpl, conv, builder.BuildOptions{Now: time.Now})
}

func printSummary(w io.Writer, outputDir string, r builder.Report) {
	fmt.Fprintf(w, "Built %d pages, %d index pages, %d feeds and %d assets into %s\n",
		r.Pages, r.Indexes, r.Feeds, r.Assets+r.Static, outputDir)
	if len(r.Drafts) > 0 {
		fmt.Fprintf(w, "Left out %d drafts\n", len(r.Drafts))
	}
	var failed, collided []builder.Skip
	for _, s := range r.Skipped {
		if errors.Is(s.Reason, builder.ErrOutputCollision) {
			collided = append(collided, s)
		} else {
			failed = append(failed, s)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintf(w, "Skipped %d items:\n", len(failed))
		for _, s := range failed {
			fmt.Fprintf(w, "  %s: %v\n", s.SourcePath, s.Reason)
		}
	}
	if len(collided) > 0 {
		// index.md in a category is the usual case; folio writes that index itself.
		fmt.Fprintf(w, "Skipped %d items whose output path is generated by folio or already taken; rename them to publish:\n", len(collided))
		for _, s := range collided {
			fmt.Fprintf(w, "  %s: %v\n", s.SourcePath, s.Reason)
		}
	}
}
