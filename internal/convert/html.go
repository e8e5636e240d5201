package convert

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// htmlConverter passes hand-written HTML documents through, keeping only the
// body and reading metadata from the head.
type htmlConverter struct{}

func (htmlConverter) Convert(_ context.Context, src []byte) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(src))
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse html: %w", err)
	}

	body, err := doc.Find("body").First().Html()
	if err != nil {
		return Result{}, fmt.Errorf("failed to serialize html body: %w", err)
	}

	meta := &Metadata{}
	found := false
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		meta.Title = title
		found = true
	} else if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		meta.Title = h1
		found = true
	}

	for _, sel := range []string{"meta[name='date']", "meta[property='article:published_time']"} {
		if v, ok := doc.Find(sel).Attr("content"); ok {
			if d, ok := ParseDate(v); ok {
				meta.Date = d
				found = true
				break
			}
		}
	}
	if v, ok := doc.Find("meta[name='description']").Attr("content"); ok && strings.TrimSpace(v) != "" {
		meta.Summary = strings.TrimSpace(v)
		found = true
	}

	if !found {
		meta = nil
	}
	return Result{HTML: body, Meta: meta}, nil
}
