// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"text/template"
	"time"

	"folio/internal/config"
	"folio/internal/layout"
	"folio/internal/logfields"
)

// ErrExists is returned instead of overwriting a file.
var ErrExists = errors.New("already exists")

// CreateNewSite lays out a starter site in dir: configuration, a sample
// page and post, the default layouts, a stylesheet and the post archetype.
func CreateNewSite(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, "site.yaml")); err == nil {
		return fmt.Errorf("site.yaml in %s: %w", dir, ErrExists)
	}
	slog.Info("Scaffolding new site", logfields.Path(dir))

	mkdir := func(path string) error { return os.MkdirAll(filepath.Join(dir, path), 0o755) }
	writeFile := func(path, content string) error {
		return os.WriteFile(filepath.Join(dir, path), []byte(content), 0o644)
	}
	for _, d := range []string{"content/blog", "static/css", "archetypes"} {
		if err := mkdir(d); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", d, err)
		}
	}

	files := map[string]string{
		"site.yaml":                        siteYAMLContent,
		".env":                             envContent,
		"content/about.md":                 aboutContent,
		"content/blog/2024-01-01-hello.md": helloContent,
		"static/css/style.css":             styleContent,
		"archetypes/post.md":               archetypeContent,
	}
	for path, content := range files {
		if err := writeFile(path, content); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}
	if err := layout.WriteDefaults(filepath.Join(dir, "layout")); err != nil {
		return fmt.Errorf("failed to write layouts: %w", err)
	}
	return nil
}

// CreateNewContent writes a dated markdown file for title into category,
// starting from archetypes/post.md under root when present. An empty
// category creates a root page. It returns the path of the new file.
func CreateNewContent(root string, site config.SiteConfig, category, title string, now time.Time) (string, error) {
	slug := Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q has no usable characters", title)
	}
	if strings.ContainsAny(category, `/\`) || strings.HasPrefix(category, ".") {
		return "", fmt.Errorf("category %q must be a single folder name", category)
	}

	contentDir := site.ContentDir
	if !filepath.IsAbs(contentDir) {
		contentDir = filepath.Join(root, contentDir)
	}
	name := slug + ".md"
	if category != "" {
		name = now.Format("2006-01-02") + "-" + name
	}
	path := filepath.Join(contentDir, category, name)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("%s: %w", path, ErrExists)
	}

	archetype := archetypeContent
	archetypePath := filepath.Join(root, "archetypes", "post.md")
	if b, err := os.ReadFile(archetypePath); err == nil {
		archetype = string(b)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(archetype)
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}
	data := struct {
		Title  string
		Author string
		Date   string
	}{
		Title:  strings.ReplaceAll(title, `"`, `\"`),
		Author: site.Author,
		Date:   now.Format("2006-01-02"),
	}
	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return "", err
	}
	slog.Info("Created content", logfields.Path(path))
	return path, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s and joins its letters and digits with dashes.
func Slugify(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}

const siteYAMLContent = `title: My Site
author: Your Name
description: A new site built with folio.
# Absolute site address, used for feed links. FOLIO_URL overrides it.
url: ${SITE_URL}
base_path: /
items_per_index: 10
feeds: true

# extras:
#   analytics: <script src="/stats.js"></script>
# converters:
#   .rst: [pandoc, -f, rst, -t, html]
`

const envContent = `SITE_URL=http://localhost:8000
`

const aboutContent = `---
title: About
---

This page lives in the content root, so it is listed in the menu.
`

const helloContent = `---
title: Hello, world
summary: The first post.
---

Posts live in category folders such as ` + "`content/blog`" + `.
`

const archetypeContent = `---
title: "{{.Title}}"
date: {{.Date}}
author: {{.Author}}
summary:
---

Write something meaningful here.
`

const styleContent = `body {
  font-family: sans-serif;
  max-width: 700px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
.header-line {
  display: flex;
  justify-content: space-between;
  align-items: baseline;
  gap: 1em;
  margin-bottom: 2em;
  flex-wrap: wrap;
}
.header-line nav a { margin-left: 0.75em; color: #444; text-decoration: none; }
.header-line nav a.active { font-weight: bold; }
.site-name { font-size: 1.1em; color: #222; text-decoration: none; }
.meta { color: #777; font-size: 0.9em; }
.entries { list-style: none; padding: 0; }
.entries li { margin-bottom: 1em; }
.entries time { color: #777; margin-right: 0.5em; }
.pager { display: flex; justify-content: space-between; }
main { margin-bottom: 3em; }
footer { text-align: center; font-size: 0.9em; color: #555; }
`
