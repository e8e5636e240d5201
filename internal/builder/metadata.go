package builder

import (
	"path"
	"regexp"
	"strings"
	"time"

	"folio/internal/convert"
)

// datePrefix matches file names like 2024-03-01-hello-world.
var datePrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.*)$`)

// ResolveMetadata fills Title, Date and Summary of a draft. Converter
// metadata wins; otherwise the title comes from the file name and the date
// from a YYYY-MM-DD- file name prefix or the modification time. The result
// depends only on its arguments.
func ResolveMetadata(it Item, meta *convert.Metadata) Item {
	title, prefixDate := titleFromFilename(it.SourcePath)

	it.Title = title
	it.Date = it.ModTime.UTC()
	if !prefixDate.IsZero() {
		it.Date = prefixDate
	}

	if meta != nil {
		if meta.Title != "" {
			it.Title = meta.Title
		}
		if !meta.Date.IsZero() {
			it.Date = meta.Date.UTC()
		}
		it.Summary = meta.Summary
	}
	return it
}

// titleFromFilename strips the extension and an optional date prefix and
// turns - and _ into spaces. It never returns an empty title.
func titleFromFilename(sourcePath string) (string, time.Time) {
	base := path.Base(sourcePath)
	name := strings.TrimSuffix(base, path.Ext(base))

	var date time.Time
	if m := datePrefix.FindStringSubmatch(name); m != nil {
		if d, err := time.Parse("2006-01-02", m[1]); err == nil {
			date = d
			name = m[2]
		}
	}

	title := strings.Join(strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(name)), " ")
	if title == "" {
		title = strings.TrimSuffix(base, path.Ext(base))
	}
	if title == "" {
		title = base
	}
	return title, date
}
