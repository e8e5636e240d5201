// internal/builder/render.go
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"folio/internal/convert"
	"folio/internal/logfields"
)

type conversion struct {
	res convert.Result
	err error
}

// renderItems converts every draft with at most workers conversions in
// flight and resolves metadata from the results. Failed items are returned
// as skips and drafts marked draft: true are dropped; neither stops the
// batch. Only context cancellation is returned as an error. Items keep
// discovery order.
func renderItems(ctx context.Context, contentDir string, drafts []Item, conv Converter, workers int) ([]Item, []Skip, []string, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]conversion, len(drafts))

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range drafts {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				results[i].err = err
				return
			}
			results[i] = convertOne(ctx, contentDir, drafts[i], conv)
		}(i)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, nil, nil, err
	}

	items := make([]Item, 0, len(drafts))
	var skipped []Skip
	var draftPaths []string
	for i, d := range drafts {
		r := results[i]
		if r.err != nil {
			slog.Warn("Skipping item after conversion failure",
				logfields.Path(d.SourcePath), logfields.Format(d.Format), logfields.Error(r.err))
			skipped = append(skipped, Skip{SourcePath: d.SourcePath, Reason: r.err})
			continue
		}
		if r.res.Meta != nil && r.res.Meta.Draft {
			slog.Info("Skipping draft", logfields.Path(d.SourcePath))
			draftPaths = append(draftPaths, d.SourcePath)
			continue
		}
		it := ResolveMetadata(d, r.res.Meta)
		it.Body = r.res.HTML
		items = append(items, it)
	}
	return items, skipped, draftPaths, nil
}

func convertOne(ctx context.Context, contentDir string, d Item, conv Converter) conversion {
	src, err := os.ReadFile(filepath.Join(contentDir, filepath.FromSlash(d.SourcePath)))
	if err != nil {
		return conversion{err: fmt.Errorf("failed to read file %s: %w", d.SourcePath, err)}
	}
	res, err := conv.Convert(ctx, src, d.Format)
	if err != nil {
		return conversion{err: err}
	}
	slog.Debug("Converted", logfields.Path(d.SourcePath), logfields.Format(d.Format))
	return conversion{res: res}
}
