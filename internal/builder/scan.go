package builder

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"folio/internal/logfields"
)

// FormatResolver maps a file name to a page format.
type FormatResolver interface {
	FormatFor(name string) (string, bool)
}

// ScanResult holds page drafts and assets in discovery order.
type ScanResult struct {
	Drafts []Item
	Assets []Asset
}

var systemFiles = map[string]bool{
	"thumbs.db":   true,
	"desktop.ini": true,
	".ds_store":   true,
}

// Scan walks contentDir and classifies every visible file. Drafts carry
// SourcePath, Category, Format, ModTime and OutputPath only. Any error while
// walking is fatal: categories cannot be built from half a tree.
func Scan(contentDir string, formats FormatResolver) (ScanResult, error) {
	var res ScanResult

	info, err := os.Stat(contentDir)
	if err != nil {
		return res, fmt.Errorf("%w: %s: %w", ErrContentUnreadable, contentDir, err)
	}
	if !info.IsDir() {
		return res, fmt.Errorf("%w: %s is not a directory", ErrContentUnreadable, contentDir)
	}

	err = filepath.WalkDir(contentDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == contentDir {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// WalkDir does not follow links. Linked files are read through the
		// link; linked directories and anything else irregular are left out.
		info, err := regularFile(p, d)
		if err != nil {
			return err
		}
		if info == nil {
			slog.Debug("Skipping non-regular file", logfields.Path(p))
			return nil
		}

		rel, err := filepath.Rel(contentDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		category := categoryOf(rel)

		format, isPage := formats.FormatFor(d.Name())
		if !isPage {
			res.Assets = append(res.Assets, Asset{SourcePath: rel, Category: category, OutputPath: rel})
			slog.Debug("Discovered asset", logfields.Path(rel), logfields.Category(category))
			return nil
		}

		res.Drafts = append(res.Drafts, Item{
			SourcePath: rel,
			Category:   category,
			Format:     format,
			ModTime:    info.ModTime(),
			OutputPath: pageOutputPath(rel),
		})
		slog.Debug("Discovered page", logfields.Path(rel), logfields.Category(category), logfields.Format(format))
		return nil
	})
	if err != nil {
		return ScanResult{}, fmt.Errorf("%w: %w", ErrContentUnreadable, err)
	}

	slog.Info("Content scanned", logfields.Count(len(res.Drafts)), slog.Int("assets", len(res.Assets)))
	return res, nil
}

// regularFile returns the file info for p, resolving symlinks. It returns nil
// when p is not a regular file or is a link to something that is not.
func regularFile(p string, d fs.DirEntry) (fs.FileInfo, error) {
	if d.Type().IsRegular() {
		return d.Info()
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return nil, nil
	}
	target, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if !target.Mode().IsRegular() {
		return nil, nil
	}
	return target, nil
}

// categoryOf returns the first path segment, or RootCategory for files
// directly in the content root. Deeper folders never form categories.
func categoryOf(rel string) string {
	first, _, nested := strings.Cut(rel, "/")
	if !nested {
		return RootCategory
	}
	return first
}

func pageOutputPath(rel string) string {
	return strings.TrimSuffix(rel, path.Ext(rel)) + ".html"
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "_") ||
		strings.HasSuffix(name, "~") ||
		systemFiles[strings.ToLower(name)]
}
