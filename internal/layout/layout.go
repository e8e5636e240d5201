// Package layout fills named HTML layouts with page fields.
//
// Layouts are html/template files. A set of defaults is embedded in the
// binary; files in a site's layout directory are parsed on top of them, so a
// site only needs to provide the layouts it wants to change.
package layout

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Layout names the pipeline renders with.
const (
	Page = "page" // root pages
	Post = "post" // category pages
	List = "list" // index pages
)

//go:embed defaults/*.html
var defaultFS embed.FS

// Site carries site-wide values into every layout.
type Site struct {
	Title       string
	Description string
	Author      string
	URL         string
	BasePath    string
}

// MenuEntry is one navigation link.
type MenuEntry struct {
	Title  string
	Link   string
	Active bool
}

// Menu lists root pages in discovery order and categories alphabetically.
type Menu struct {
	Pages      []MenuEntry
	Categories []MenuEntry
}

// Entry is one line of an index page.
type Entry struct {
	Title    string
	Link     string
	Summary  string
	Category string
	Date     time.Time
}

// Fields is the data handed to a layout.
type Fields struct {
	Site     Site
	Menu     Menu
	Title    string
	Date     time.Time
	Category string
	Content  template.HTML

	Entries    []Entry
	Newer      string
	Older      string
	PageNumber int
	PageCount  int

	FeedLink string
	AtomLink string
	BaseHref string
	Year     int

	// Extras are opaque snippets from configuration, never inspected.
	Extras map[string]template.HTML
}

// Engine renders a named layout.
type Engine interface {
	Render(w io.Writer, name string, f Fields) error
}

// Templates is the html/template backed Engine.
type Templates struct {
	tmpl *template.Template
}

// Defaults returns the embedded layouts.
func Defaults() (*Templates, error) {
	tmpl, err := template.New("layouts").ParseFS(defaultFS, "defaults/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse default layouts: %w", err)
	}
	return &Templates{tmpl: tmpl}, nil
}

// Load parses every *.html file in dir over the embedded defaults. A missing
// dir is not an error.
func Load(dir string) (*Templates, error) {
	t, err := Defaults()
	if err != nil {
		return nil, err
	}
	if dir == "" {
		return t, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return t, nil
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return t, nil
	}
	if t.tmpl, err = t.tmpl.ParseFiles(files...); err != nil {
		return nil, fmt.Errorf("failed to parse layouts in %s: %w", dir, err)
	}
	return t, nil
}

// Render executes the layout called name (the file name without .html).
func (t *Templates) Render(w io.Writer, name string, f Fields) error {
	if t.tmpl.Lookup(name+".html") == nil {
		return fmt.Errorf("layout %q not found", name)
	}
	return t.tmpl.ExecuteTemplate(w, name+".html", f)
}

// WriteDefaults copies the embedded layouts into dir.
func WriteDefaults(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	entries, err := defaultFS.ReadDir("defaults")
	if err != nil {
		return err
	}
	for _, e := range entries {
		data, err := defaultFS.ReadFile("defaults/" + e.Name())
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
