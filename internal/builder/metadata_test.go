package builder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"folio/internal/convert"
)

func TestResolveMetadata(t *testing.T) {
	mtime := time.Date(2022, 2, 3, 4, 5, 6, 0, time.FixedZone("x", 3600))
	metaDate := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		source    string
		meta      *convert.Metadata
		wantTitle string
		wantDate  time.Time
		wantSum   string
	}{
		{
			name:      "file name and mtime",
			source:    "blog/hello-big_world.md",
			wantTitle: "hello big world",
			wantDate:  mtime.UTC(),
		},
		{
			name:      "date prefix",
			source:    "blog/2024-03-01-launch-day.md",
			wantTitle: "launch day",
			wantDate:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:      "invalid date prefix stays in title",
			source:    "blog/2024-13-45-odd.md",
			wantTitle: "2024 13 45 odd",
			wantDate:  mtime.UTC(),
		},
		{
			name:      "converter metadata wins",
			source:    "blog/2024-03-01-launch-day.md",
			meta:      &convert.Metadata{Title: "Launch", Date: metaDate, Summary: "s"},
			wantTitle: "Launch",
			wantDate:  metaDate,
			wantSum:   "s",
		},
		{
			name:      "partial metadata falls through per field",
			source:    "2020-05-05-about.md",
			meta:      &convert.Metadata{Summary: "only summary"},
			wantTitle: "about",
			wantDate:  time.Date(2020, 5, 5, 0, 0, 0, 0, time.UTC),
			wantSum:   "only summary",
		},
		{
			name:      "name of separators only",
			source:    "blog/---.md",
			wantTitle: "---",
			wantDate:  mtime.UTC(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := ResolveMetadata(Item{SourcePath: tt.source, ModTime: mtime}, tt.meta)
			assert.Equal(t, tt.wantTitle, it.Title)
			assert.True(t, tt.wantDate.Equal(it.Date), "date %v", it.Date)
			assert.Equal(t, time.UTC, it.Date.Location())
			assert.Equal(t, tt.wantSum, it.Summary)
		})
	}
}

func TestResolveMetadata_Idempotent(t *testing.T) {
	in := Item{SourcePath: "blog/2024-01-02-x.md", ModTime: fixedTime}
	meta := &convert.Metadata{Title: "X"}
	assert.Equal(t, ResolveMetadata(in, meta), ResolveMetadata(in, meta))
}
