package builder

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"folio/internal/config"
	"folio/internal/convert"
	"folio/internal/layout"
)

var fixedTime = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

// writeTree creates files under root and pins their mtimes so fallback dates
// do not depend on when the test runs.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, body := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		require.NoError(t, os.Chtimes(p, fixedTime, fixedTime))
	}
}

// readTree returns every file under root keyed by slash-separated path.
func readTree(t *testing.T, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func testSite(t *testing.T) config.SiteConfig {
	t.Helper()
	dir := t.TempDir()
	site := config.Default()
	site.Title = "Test Site"
	site.URL = "https://example.org"
	site.Workers = 4
	site.ContentDir = filepath.Join(dir, "content")
	site.LayoutDir = filepath.Join(dir, "layout")
	site.StaticDir = filepath.Join(dir, "static")
	site.OutputDir = filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(site.ContentDir, 0o755))
	return site
}

func buildSite(t *testing.T, site config.SiteConfig) (Report, error) {
	t.Helper()
	tmpl, err := layout.Defaults()
	require.NoError(t, err)
	return BuildSite(context.Background(), site, tmpl, convert.NewRegistry(convert.Options{}), BuildOptions{})
}

func post(title, date string) string {
	return "---\ntitle: " + title + "\ndate: " + date + "\nsummary: about " + title + "\n---\n\nBody of " + title + ".\n"
}
