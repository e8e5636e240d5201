// internal/builder/builder.go
package builder

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"folio/internal/config"
	"folio/internal/layout"
	"folio/internal/logfields"
	"folio/internal/util"
)

// BuildSite scans the content tree, converts every page, and writes pages,
// index pages, feeds, assets and the static directory into the output tree.
// Configuration and scan errors return before the output tree is touched.
// Per-item failures are logged and listed in the report.
func BuildSite(ctx context.Context, site config.SiteConfig, tmpl layout.Engine, conv Converter, opts BuildOptions) (Report, error) {
	var report Report
	start := time.Now()

	if err := site.Validate(); err != nil {
		return report, err
	}
	if err := checkDirs(site); err != nil {
		return report, err
	}

	stage := time.Now()
	scan, err := Scan(site.ContentDir, conv)
	if err != nil {
		return report, err
	}
	logStage("scan", stage)

	stage = time.Now()
	items, skipped, drafts, err := renderItems(ctx, site.ContentDir, scan.Drafts, conv, site.Workers)
	if err != nil {
		return report, err
	}
	report.Drafts = drafts
	report.Skipped = skipped
	logStage("convert", stage)

	items, assets, collisions := claimOutputs(items, scan.Assets, site.ItemsPerIndex, site.Feeds)
	for _, s := range collisions {
		slog.Warn("Skipping item", logfields.Path(s.SourcePath), logfields.Error(s.Reason))
	}
	report.Skipped = append(report.Skipped, collisions...)

	stage = time.Now()
	r := newRenderer(site, tmpl, opts, BuildIndex(items))
	files, err := r.renderAll(items)
	if err != nil {
		return report, err
	}
	logStage("render", stage)

	stage = time.Now()
	if err := resetOutput(site.OutputDir); err != nil {
		return report, err
	}
	if report.Static, err = copyStatic(site.StaticDir, site.OutputDir); err != nil {
		return report, err
	}
	for _, f := range files {
		if err := writeFile(site.OutputDir, f); err != nil {
			return report, err
		}
	}
	for _, a := range assets {
		src := filepath.Join(site.ContentDir, filepath.FromSlash(a.SourcePath))
		dest := filepath.Join(site.OutputDir, filepath.FromSlash(a.OutputPath))
		if err := copyFile(src, dest); err != nil {
			return report, fmt.Errorf("%w: asset %s: %w", ErrOutputUnwritable, a.SourcePath, err)
		}
	}
	logStage("write", stage)

	report.Pages = r.pages
	report.Indexes = r.indexes
	report.Feeds = r.feeds
	report.Assets = len(assets)

	slog.Info("Build finished",
		slog.Int("pages", report.Pages),
		slog.Int("indexes", report.Indexes),
		slog.Int("feeds", report.Feeds),
		slog.Int("assets", report.Assets),
		slog.Int("skipped", len(report.Skipped)),
		logfields.DurationMS(msSince(start)))
	return report, nil
}

// checkDirs refuses output directories that would wipe the content or static
// tree, or that sit inside one and would be read back on the next build.
func checkDirs(site config.SiteConfig) error {
	out, err := filepath.Abs(site.OutputDir)
	if err != nil {
		return fmt.Errorf("%w: output_dir: %w", config.ErrInvalidConfig, err)
	}
	for _, dir := range []string{site.ContentDir, site.StaticDir} {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", config.ErrInvalidConfig, dir, err)
		}
		sep := string(filepath.Separator)
		if abs == out || strings.HasPrefix(abs+sep, out+sep) {
			return fmt.Errorf("%w: output_dir %s would remove %s", config.ErrInvalidConfig, site.OutputDir, dir)
		}
		if strings.HasPrefix(out+sep, abs+sep) {
			return fmt.Errorf("%w: output_dir %s is inside %s", config.ErrInvalidConfig, site.OutputDir, dir)
		}
	}
	return nil
}

// renderer turns items and index pages into output files.
type renderer struct {
	site   config.SiteConfig
	tmpl   layout.Engine
	index  SiteIndex
	menu   layout.Menu
	extras map[string]template.HTML
	year   int

	pages, indexes, feeds int
}

func newRenderer(site config.SiteConfig, tmpl layout.Engine, opts BuildOptions, idx SiteIndex) *renderer {
	r := &renderer{
		site:   site,
		tmpl:   tmpl,
		index:  idx,
		menu:   idx.Menu(site.Link),
		extras: make(map[string]template.HTML, len(site.Extras)),
	}
	for k, v := range site.Extras {
		r.extras[k] = template.HTML(v)
	}
	if opts.Now != nil {
		r.year = opts.Now().Year()
	}
	return r
}

func (r *renderer) renderAll(items []Item) ([]outputFile, error) {
	var files []outputFile

	for _, it := range items {
		f, err := r.renderItem(it)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		r.pages++
	}

	for _, p := range r.index.IndexPages(r.site.ItemsPerIndex) {
		f, err := r.renderIndex(p)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
		r.indexes++
	}

	if r.site.Feeds {
		limit := r.site.FeedLimit()
		feed, err := renderFeeds(r.site, "", r.site.Title, r.index.Global.View(ViewFeed, limit))
		if err != nil {
			return nil, err
		}
		files = append(files, feed...)
		for _, name := range r.index.Names {
			title := r.site.Title + " - " + CategoryLabel(name)
			feed, err := renderFeeds(r.site, name, title, r.index.Categories[name].View(ViewFeed, limit))
			if err != nil {
				return nil, err
			}
			files = append(files, feed...)
		}
		r.feeds = 2 * (len(r.index.Names) + 1)
	}
	return files, nil
}

func (r *renderer) renderItem(it Item) (outputFile, error) {
	name := layout.Post
	category := it.Category
	if it.Category == RootCategory {
		name = layout.Page
		category = ""
	}

	f := r.fields(it.Title, it.OutputPath, category)
	f.Menu = activeMenu(r.menu, r.site.Link(it.OutputPath), r.categoryLink(category))
	f.Date = it.Date
	f.Content = template.HTML(it.Body)

	data, err := r.execute(name, f)
	if err != nil {
		return outputFile{}, fmt.Errorf("%w: %s: %w", ErrLayout, it.SourcePath, err)
	}
	slog.Debug("Rendered page", logfields.Path(it.SourcePath), logfields.Output(it.OutputPath))
	return outputFile{path: it.OutputPath, data: data}, nil
}

func (r *renderer) renderIndex(p IndexPage) (outputFile, error) {
	f := r.fields(p.Title, p.OutputPath, p.Category)
	f.Menu = activeMenu(r.menu, "", r.categoryLink(p.Category))
	f.PageNumber = p.Number
	f.PageCount = p.Count
	if p.Newer != "" {
		f.Newer = r.site.Link(p.Newer)
	}
	if p.Older != "" {
		f.Older = r.site.Link(p.Older)
	}
	for _, it := range p.Items {
		f.Entries = append(f.Entries, layout.Entry{
			Title:    it.Title,
			Link:     r.site.Link(it.OutputPath),
			Summary:  it.Summary,
			Category: it.Category,
			Date:     it.Date,
		})
	}

	data, err := r.execute(layout.List, f)
	if err != nil {
		return outputFile{}, fmt.Errorf("%w: %s: %w", ErrLayout, p.OutputPath, err)
	}
	return outputFile{path: p.OutputPath, data: data}, nil
}

// fields fills what every layout gets. category is empty outside categories.
func (r *renderer) fields(title, outputPath, category string) layout.Fields {
	f := layout.Fields{
		Site: layout.Site{
			Title:       r.site.Title,
			Description: r.site.Description,
			Author:      r.site.Author,
			URL:         r.site.URL,
			BasePath:    r.site.BasePath,
		},
		Title:    title,
		Category: category,
		BaseHref: util.ComputeBaseHref(outputPath),
		Year:     r.year,
		Extras:   r.extras,
	}
	if r.site.Feeds {
		rss, atom := feedPaths(category)
		f.FeedLink = r.site.Link(rss)
		f.AtomLink = r.site.Link(atom)
	}
	return f
}

func (r *renderer) categoryLink(category string) string {
	if category == "" {
		return ""
	}
	return r.site.Link(category + "/")
}

func (r *renderer) execute(name string, f layout.Fields) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Render(&buf, name, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func logStage(name string, start time.Time) {
	slog.Info("Stage finished", logfields.Stage(name), logfields.DurationMS(msSince(start)))
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
