package builder

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

func TestNewSequence_TotalOrder(t *testing.T) {
	items := []Item{
		{SourcePath: "blog/b.md", Date: day(2)},
		{SourcePath: "blog/c.md", Date: day(3)},
		{SourcePath: "blog/a.md", Date: day(2)},
		{SourcePath: "blog/d.md", Date: day(1)},
	}

	seq := NewSequence(items)

	var got []string
	for _, it := range seq {
		got = append(got, it.SourcePath)
	}
	assert.Equal(t, []string{"blog/c.md", "blog/a.md", "blog/b.md", "blog/d.md"}, got)
	assert.Equal(t, "blog/b.md", items[0].SourcePath, "input must not be reordered")
}

func TestSequence_Views(t *testing.T) {
	seq := NewSequence([]Item{{SourcePath: "a", Date: day(1)}, {SourcePath: "b", Date: day(2)}, {SourcePath: "c", Date: day(3)}})

	idx := seq.View(ViewIndex, 0)
	feed := seq.View(ViewFeed, 2)

	assert.Equal(t, ViewIndex, idx.Kind)
	assert.Equal(t, ViewFeed, feed.Kind)
	assert.Len(t, idx.Items, 3)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, idx.Items[:2], feed.Items)
	assert.Len(t, seq.Head(10), 3)
}

func TestBuildIndex_SplitsRootPages(t *testing.T) {
	idx := BuildIndex([]Item{
		{SourcePath: "zeta.md", Category: RootCategory, Title: "Zeta", OutputPath: "zeta.html", Date: day(9)},
		{SourcePath: "notes/n.md", Category: "notes", Date: day(1), OutputPath: "notes/n.html"},
		{SourcePath: "about.md", Category: RootCategory, Title: "About", OutputPath: "about.html", Date: day(8)},
		{SourcePath: "blog/b.md", Category: "blog", Date: day(2), OutputPath: "blog/b.html"},
	})

	assert.Equal(t, []string{"blog", "notes"}, idx.Names)
	require.Len(t, idx.Pages, 2)
	assert.Equal(t, "zeta.md", idx.Pages[0].SourcePath, "root pages keep discovery order")
	require.Len(t, idx.Global, 2)
	assert.Equal(t, "blog/b.md", idx.Global[0].SourcePath)

	menu := idx.Menu(func(p string) string { return "/" + p })
	require.Len(t, menu.Pages, 2)
	assert.Equal(t, "Zeta", menu.Pages[0].Title)
	assert.Equal(t, "/zeta.html", menu.Pages[0].Link)
	require.Len(t, menu.Categories, 2)
	assert.Equal(t, "Blog", menu.Categories[0].Title)
	assert.Equal(t, "/blog/", menu.Categories[0].Link)
}

func TestIndexPages_Pagination(t *testing.T) {
	var items []Item
	for i := 1; i <= 5; i++ {
		items = append(items, Item{
			SourcePath: fmt.Sprintf("blog/p%d.md", i),
			Category:   "blog",
			Date:       day(i),
		})
	}
	pages := BuildIndex(items).IndexPages(2)

	require.Len(t, pages, 4)
	home := pages[0]
	assert.Equal(t, "index.html", home.OutputPath)
	assert.Equal(t, HomeTitle, home.Title)
	assert.Len(t, home.Items, 2)

	blog := pages[1:]
	assert.Equal(t, "blog/index.html", blog[0].OutputPath)
	assert.Equal(t, "blog/index-2.html", blog[1].OutputPath)
	assert.Equal(t, "blog/index-3.html", blog[2].OutputPath)

	assert.Empty(t, blog[0].Newer)
	assert.Equal(t, "blog/index-2.html", blog[0].Older)
	assert.Equal(t, "blog/index.html", blog[1].Newer)
	assert.Equal(t, "blog/index-3.html", blog[1].Older)
	assert.Equal(t, "blog/index-2.html", blog[2].Newer)
	assert.Empty(t, blog[2].Older)

	for _, p := range blog {
		assert.Equal(t, 3, p.Count)
		assert.Equal(t, "Blog", p.Title)
	}
	require.Len(t, blog[2].Items, 1)
	assert.Equal(t, "blog/p1.md", blog[2].Items[0].SourcePath)
	assert.Equal(t, "blog/p5.md", blog[0].Items[0].SourcePath)
}

func TestIndexPages_ZeroMeansSinglePage(t *testing.T) {
	var items []Item
	for i := 1; i <= 12; i++ {
		items = append(items, Item{SourcePath: fmt.Sprintf("blog/p%02d.md", i), Category: "blog", Date: day(i)})
	}
	pages := BuildIndex(items).IndexPages(0)

	require.Len(t, pages, 2)
	assert.Len(t, pages[0].Items, 12)
	assert.Len(t, pages[1].Items, 12)
	assert.Empty(t, pages[1].Older)
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "Blog", CategoryLabel("blog"))
	assert.Equal(t, "Release Notes", CategoryLabel("release-notes"))
	assert.Equal(t, "How To", CategoryLabel("how_to"))
}

func TestClaimOutputs(t *testing.T) {
	items := []Item{
		{SourcePath: "index.md", Category: RootCategory, OutputPath: "index.html"},
		{SourcePath: "blog/index.md", Category: "blog", OutputPath: "blog/index.html"},
		{SourcePath: "blog/index-2.md", Category: "blog", OutputPath: "blog/index-2.html"},
		{SourcePath: "blog/deep/index.md", Category: "blog", OutputPath: "blog/deep/index.html"},
		{SourcePath: "blog/post.md", Category: "blog", OutputPath: "blog/post.html"},
		{SourcePath: "blog/post.html", Category: "blog", OutputPath: "blog/post.html"},
	}
	assets := []Asset{
		{SourcePath: "blog/rss.xml", Category: "blog", OutputPath: "blog/rss.xml"},
		{SourcePath: "blog/cat.png", Category: "blog", OutputPath: "blog/cat.png"},
	}

	keptItems, keptAssets, skipped := claimOutputs(items, assets, 2, true)

	var kept []string
	for _, it := range keptItems {
		kept = append(kept, it.SourcePath)
	}
	assert.Equal(t, []string{"blog/deep/index.md", "blog/post.md"}, kept)
	require.Len(t, keptAssets, 1)
	assert.Equal(t, "blog/cat.png", keptAssets[0].SourcePath)

	require.Len(t, skipped, 5)
	for _, s := range skipped {
		assert.ErrorIs(t, s.Reason, ErrOutputCollision)
	}

	_, keptAssets, _ = claimOutputs(nil, assets, 2, false)
	assert.Len(t, keptAssets, 2, "feed names are free when feeds are off")
}

func TestClaimOutputs_OnlyGeneratedPathsAreTaken(t *testing.T) {
	items := []Item{
		{SourcePath: "blog/a.md", Category: "blog", OutputPath: "blog/a.html"},
		{SourcePath: "blog/b.md", Category: "blog", OutputPath: "blog/b.html"},
		{SourcePath: "blog/index-2.md", Category: "blog", OutputPath: "blog/index-2.html"},
		{SourcePath: "root/notes.md", Category: RootCategory, OutputPath: "root/notes.html"},
	}
	assets := []Asset{
		{SourcePath: "downloads/rss.xml", OutputPath: "downloads/rss.xml"},
		{SourcePath: "downloads/index-2.html", OutputPath: "downloads/index-2.html"},
		{SourcePath: "root/atom.xml", OutputPath: "root/atom.xml"},
		{SourcePath: "blog/index-3.html", OutputPath: "blog/index-3.html"},
		{SourcePath: "blog/atom.xml", OutputPath: "blog/atom.xml"},
	}

	keptItems, keptAssets, skipped := claimOutputs(items, assets, 2, true)

	// Three blog items would need blog/index-2.html, so that page loses and
	// the two left fit on one listing page.
	var kept []string
	for _, it := range keptItems {
		kept = append(kept, it.SourcePath)
	}
	assert.Equal(t, []string{"blog/a.md", "blog/b.md", "root/notes.md"}, kept)

	var assetsKept []string
	for _, a := range keptAssets {
		assetsKept = append(assetsKept, a.SourcePath)
	}
	assert.Equal(t, []string{"downloads/rss.xml", "downloads/index-2.html", "root/atom.xml", "blog/index-3.html"}, assetsKept)

	var dropped []string
	for _, s := range skipped {
		dropped = append(dropped, s.SourcePath)
		assert.ErrorIs(t, s.Reason, ErrOutputCollision)
	}
	assert.Equal(t, []string{"blog/index-2.md", "blog/atom.xml"}, dropped)
}
