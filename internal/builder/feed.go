package builder

import (
	"fmt"
	"path"

	"github.com/gorilla/feeds"

	"folio/internal/config"
)

const (
	rssFile  = "rss.xml"
	atomFile = "atom.xml"
)

// feedPaths returns the RSS and Atom output paths for a category, or for the
// whole site when category is empty.
func feedPaths(category string) (rss, atom string) {
	return path.Join(category, rssFile), path.Join(category, atomFile)
}

// newFeed describes v as a feed. The feed timestamp is the newest item date,
// so equal input gives equal output.
func newFeed(site config.SiteConfig, title, indexPath string, v View) *feeds.Feed {
	f := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: site.AbsURL(indexPath)},
		Description: site.Description,
		Id:          site.AbsURL(indexPath),
	}
	if site.Author != "" {
		f.Author = &feeds.Author{Name: site.Author}
	}
	for _, it := range v.Items {
		link := site.AbsURL(it.OutputPath)
		f.Items = append(f.Items, &feeds.Item{
			Title:       it.Title,
			Link:        &feeds.Link{Href: link},
			Id:          link,
			Description: it.Summary,
			Created:     it.Date,
			Updated:     it.Date,
		})
		if it.Date.After(f.Updated) {
			f.Updated = it.Date
		}
	}
	f.Created = f.Updated
	return f
}

// renderFeeds encodes one feed as RSS 2.0 and Atom.
func renderFeeds(site config.SiteConfig, category, title string, v View) ([]outputFile, error) {
	indexPath := "index.html"
	if category != "" {
		indexPath = path.Join(category, "index.html")
	}
	f := newFeed(site, title, indexPath, v)
	rssPath, atomPath := feedPaths(category)

	rss, err := f.ToRss()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", rssPath, err)
	}
	atom, err := f.ToAtom()
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", atomPath, err)
	}
	return []outputFile{
		{path: rssPath, data: []byte(rss)},
		{path: atomPath, data: []byte(atom)},
	}, nil
}
