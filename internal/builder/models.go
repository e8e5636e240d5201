// internal/builder/models.go
package builder

import (
	"context"
	"time"

	"folio/internal/convert"
)

// RootCategory is the category of files placed directly in the content root.
const RootCategory = "root"

// Item is one content document on its way to becoming a page. Paths are
// slash-separated and relative to the content or output root.
type Item struct {
	SourcePath string
	Category   string
	Format     string
	ModTime    time.Time

	Title      string
	Date       time.Time
	Summary    string
	Body       string
	OutputPath string
}

// Asset is a non-page file copied verbatim.
type Asset struct {
	SourcePath string
	Category   string
	OutputPath string
}

// Skip records an item left out of the build and why.
type Skip struct {
	SourcePath string
	Reason     error
}

// Report summarizes a finished build.
type Report struct {
	Pages   int
	Indexes int
	Feeds   int
	Assets  int
	Static  int
	Drafts  []string
	Skipped []Skip
}

// Converter is the conversion service the pipeline depends on.
type Converter interface {
	FormatFor(name string) (string, bool)
	Convert(ctx context.Context, src []byte, format string) (convert.Result, error)
}

// BuildOptions holds per-invocation knobs that are not site configuration.
type BuildOptions struct {
	// Now supplies the copyright year shown by layouts. Nil leaves it out,
	// which keeps output independent of the build date.
	Now func() time.Time
}
