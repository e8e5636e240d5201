package builder

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"folio/internal/layout"
)

// HomeTitle is the title of the site-wide index page.
const HomeTitle = "Recent posts"

// ViewKind tells the two consumers of a sorted sequence apart.
type ViewKind int

const (
	ViewIndex ViewKind = iota
	ViewFeed
)

func (k ViewKind) String() string {
	if k == ViewFeed {
		return "feed"
	}
	return "index"
}

// Sequence is a list of items in index order: newest first, ties broken by
// source path.
type Sequence []Item

// View is a bounded window over the head of a Sequence.
type View struct {
	Kind  ViewKind
	Items []Item
}

// NewSequence returns a sorted copy of items.
func NewSequence(items []Item) Sequence {
	s := make(Sequence, len(items))
	copy(s, items)
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].Date.Equal(s[j].Date) {
			return s[i].Date.After(s[j].Date)
		}
		return s[i].SourcePath < s[j].SourcePath
	})
	return s
}

// Head returns the first n items. n <= 0 means all of them.
func (s Sequence) Head(n int) []Item {
	if n <= 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// View returns the first limit items as a view of the given kind.
func (s Sequence) View(kind ViewKind, limit int) View {
	return View{Kind: kind, Items: s.Head(limit)}
}

// IndexPage is one generated listing page.
type IndexPage struct {
	Category   string // empty for the home page
	Title      string
	OutputPath string
	Number     int
	Count      int
	Items      []Item
	Newer      string // output path, empty on the first page
	Older      string // output path, empty on the last page
}

// SiteIndex groups converted items for listing.
type SiteIndex struct {
	// Global holds every non-root item.
	Global Sequence
	// Categories maps a category name to its items.
	Categories map[string]Sequence
	// Names lists category names alphabetically.
	Names []string
	// Pages holds root pages in discovery order.
	Pages []Item
}

// BuildIndex sorts items into the global and per-category sequences.
func BuildIndex(items []Item) SiteIndex {
	idx := SiteIndex{Categories: make(map[string]Sequence)}
	var posts []Item
	byCat := make(map[string][]Item)
	for _, it := range items {
		if it.Category == RootCategory {
			idx.Pages = append(idx.Pages, it)
			continue
		}
		posts = append(posts, it)
		byCat[it.Category] = append(byCat[it.Category], it)
	}
	idx.Global = NewSequence(posts)
	for name, list := range byCat {
		idx.Categories[name] = NewSequence(list)
		idx.Names = append(idx.Names, name)
	}
	sort.Strings(idx.Names)
	return idx
}

// IndexPages returns the home page followed by every category's pages in
// category order. perPage bounds the home page and splits category listings;
// zero keeps everything on one page.
func (x SiteIndex) IndexPages(perPage int) []IndexPage {
	pages := []IndexPage{{
		Title:      HomeTitle,
		OutputPath: "index.html",
		Number:     1,
		Count:      1,
		Items:      x.Global.View(ViewIndex, perPage).Items,
	}}
	for _, name := range x.Names {
		pages = append(pages, paginate(name, x.Categories[name], perPage)...)
	}
	return pages
}

func paginate(category string, seq Sequence, perPage int) []IndexPage {
	size := perPage
	if size <= 0 || size > len(seq) {
		size = len(seq)
	}
	count := 1
	if size > 0 {
		count = (len(seq) + size - 1) / size
	}

	title := CategoryLabel(category)
	pages := make([]IndexPage, count)
	for n := 1; n <= count; n++ {
		lo := (n - 1) * size
		hi := min(lo+size, len(seq))
		p := IndexPage{
			Category:   category,
			Title:      title,
			OutputPath: indexPath(category, n),
			Number:     n,
			Count:      count,
			Items:      seq[lo:hi],
		}
		if n > 1 {
			p.Newer = indexPath(category, n-1)
		}
		if n < count {
			p.Older = indexPath(category, n+1)
		}
		pages[n-1] = p
	}
	return pages
}

func indexPath(category string, n int) string {
	if n == 1 {
		return path.Join(category, "index.html")
	}
	return path.Join(category, fmt.Sprintf("index-%d.html", n))
}

// CategoryLabel turns a category folder name into a menu label.
func CategoryLabel(name string) string {
	return cases.Title(language.English).String(strings.NewReplacer("-", " ", "_", " ").Replace(name))
}

// Menu builds navigation from root pages and categories. link maps an output
// path to a site link.
func (x SiteIndex) Menu(link func(string) string) layout.Menu {
	var m layout.Menu
	for _, p := range x.Pages {
		m.Pages = append(m.Pages, layout.MenuEntry{Title: p.Title, Link: link(p.OutputPath)})
	}
	for _, name := range x.Names {
		m.Categories = append(m.Categories, layout.MenuEntry{Title: CategoryLabel(name), Link: link(name + "/")})
	}
	return m
}

// activeMenu returns a copy of m with the entry for the current page or
// category marked.
func activeMenu(m layout.Menu, pageLink, categoryLink string) layout.Menu {
	out := layout.Menu{
		Pages:      make([]layout.MenuEntry, len(m.Pages)),
		Categories: make([]layout.MenuEntry, len(m.Categories)),
	}
	for i, e := range m.Pages {
		e.Active = pageLink != "" && e.Link == pageLink
		out.Pages[i] = e
	}
	for i, e := range m.Categories {
		e.Active = categoryLink != "" && e.Link == categoryLink
		out.Categories[i] = e
	}
	return out
}

// generatedPaths lists every output path the home page, category listings
// and feeds will occupy for items.
func generatedPaths(items []Item, perPage int, feeds bool) map[string]bool {
	idx := BuildIndex(items)
	gen := make(map[string]bool)
	for _, p := range idx.IndexPages(perPage) {
		gen[p.OutputPath] = true
	}
	if feeds {
		for _, category := range append([]string{""}, idx.Names...) {
			rss, atom := feedPaths(category)
			gen[rss] = true
			gen[atom] = true
		}
	}
	return gen
}

// claimOutputs drops items and assets whose output path is taken by a
// generated file or already claimed. Items claim before assets; within each
// group the first in discovery order wins. Dropping an item can shrink a
// category's listing, so items are checked until no more collide.
func claimOutputs(items []Item, assets []Asset, perPage int, feeds bool) ([]Item, []Asset, []Skip) {
	claimed := make(map[string]string)
	var skipped []Skip
	collide := func(src, out, reason string) {
		skipped = append(skipped, Skip{SourcePath: src, Reason: fmt.Errorf("%w: %s %s", ErrOutputCollision, out, reason)})
	}

	keptItems := items[:0:0]
	for _, it := range items {
		if owner, ok := claimed[it.OutputPath]; ok {
			collide(it.SourcePath, it.OutputPath, "already written for "+owner)
			continue
		}
		claimed[it.OutputPath] = it.SourcePath
		keptItems = append(keptItems, it)
	}

	var gen map[string]bool
	for {
		gen = generatedPaths(keptItems, perPage, feeds)
		next := keptItems[:0:0]
		for _, it := range keptItems {
			if gen[it.OutputPath] {
				collide(it.SourcePath, it.OutputPath, "is generated")
				delete(claimed, it.OutputPath)
				continue
			}
			next = append(next, it)
		}
		if len(next) == len(keptItems) {
			break
		}
		keptItems = next
	}

	keptAssets := assets[:0:0]
	for _, a := range assets {
		if gen[a.OutputPath] {
			collide(a.SourcePath, a.OutputPath, "is generated")
			continue
		}
		if owner, ok := claimed[a.OutputPath]; ok {
			collide(a.SourcePath, a.OutputPath, "already written for "+owner)
			continue
		}
		claimed[a.OutputPath] = a.SourcePath
		keptAssets = append(keptAssets, a)
	}
	return keptItems, keptAssets, skipped
}
