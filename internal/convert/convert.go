// Package convert turns source documents into HTML fragments.
//
// A Registry maps file extensions to named formats and formats to
// Converters. Converters may report Metadata extracted from the document;
// formats that carry none simply return a nil Meta and callers fall back to
// whatever they can derive from the file itself.
package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrConversion is matched by every error returned from Registry.Convert.
	ErrConversion = errors.New("conversion failed")
	// ErrUnsupportedFormat is returned for formats with no registered converter.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Built-in format names.
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatEditML   = "editml"
	FormatText     = "text"
	FormatStory    = "story"
)

// Metadata is what a converter could learn about a document from its content.
type Metadata struct {
	Title   string
	Date    time.Time
	Summary string
	Draft   bool
}

// Result is the output of a single conversion.
type Result struct {
	HTML string
	Meta *Metadata
}

// Converter converts one document. Implementations must not keep state
// between calls; the registry calls them from several goroutines at once.
type Converter interface {
	Convert(ctx context.Context, src []byte) (Result, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(ctx context.Context, src []byte) (Result, error)

func (f ConverterFunc) Convert(ctx context.Context, src []byte) (Result, error) {
	return f(ctx, src)
}

// textOnly rejects sources that are not UTF-8 before c sees them. External
// commands are not wrapped; they may read binary formats such as .docx.
type textOnly struct {
	c Converter
}

func (t textOnly) Convert(ctx context.Context, src []byte) (Result, error) {
	if !utf8.Valid(src) {
		return Result{}, errors.New("source is not valid UTF-8")
	}
	return t.c.Convert(ctx, src)
}

// Error describes a failed conversion of a single document.
type Error struct {
	Format string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("convert %s: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrConversion }

// Options configures NewRegistry.
type Options struct {
	// Unsafe disables HTML sanitizing of converter output.
	Unsafe bool
	// External maps extensions (".rst") to a command run once per document.
	External map[string][]string
}

// Registry resolves formats by extension and dispatches conversions.
// It is safe for concurrent use once construction is finished.
type Registry struct {
	formats    map[string]string
	converters map[string]Converter
	sanitizer  *bluemonday.Policy
}

// NewRegistry returns a registry with the built-in formats plus any
// external commands from opts.
func NewRegistry(opts Options) *Registry {
	r := &Registry{
		formats:    make(map[string]string),
		converters: make(map[string]Converter),
	}
	if !opts.Unsafe {
		r.sanitizer = bluemonday.UGCPolicy()
	}

	md := newMarkdown(r.IsPageFile)
	r.Register(FormatMarkdown, textOnly{md}, ".md", ".markdown", ".mdown")
	r.Register(FormatHTML, textOnly{htmlConverter{}}, ".html", ".htm")
	r.Register(FormatEditML, textOnly{editMLConverter{md: md}}, ".editml")
	r.Register(FormatText, textOnly{textConverter{}}, ".txt")
	r.Register(FormatStory, textOnly{storyConverter{md: md}}, ".biff")

	exts := make([]string, 0, len(opts.External))
	for ext := range opts.External {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	for _, ext := range exts {
		format := strings.TrimPrefix(strings.ToLower(ext), ".")
		r.Register(format, &execConverter{argv: opts.External[ext]}, ext)
	}
	return r
}

// Register binds a converter to format and claims the given extensions,
// replacing any previous owner.
func (r *Registry) Register(format string, c Converter, exts ...string) {
	r.converters[format] = c
	for _, ext := range exts {
		r.formats[strings.ToLower(ext)] = format
	}
}

// FormatFor returns the format for a file name based on its extension.
func (r *Registry) FormatFor(name string) (string, bool) {
	format, ok := r.formats[strings.ToLower(filepath.Ext(name))]
	return format, ok
}

// IsPageFile reports whether name has a registered page extension.
func (r *Registry) IsPageFile(name string) bool {
	_, ok := r.FormatFor(name)
	return ok
}

// Extensions lists the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.formats))
	for ext := range r.formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Convert runs the converter for format over src, sanitizes the HTML and
// trims surrounding whitespace. Every returned error matches ErrConversion.
func (r *Registry) Convert(ctx context.Context, src []byte, format string) (Result, error) {
	c, ok := r.converters[format]
	if !ok {
		return Result{}, &Error{Format: format, Err: ErrUnsupportedFormat}
	}
	res, err := c.Convert(ctx, src)
	if err != nil {
		return Result{}, &Error{Format: format, Err: err}
	}
	if r.sanitizer != nil {
		res.HTML = r.sanitizer.Sanitize(res.HTML)
	}
	res.HTML = strings.TrimSpace(res.HTML)
	return res, nil
}
