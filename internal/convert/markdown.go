// internal/convert/markdown.go
package convert

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

type markdownConverter struct {
	md goldmark.Markdown
}

func newMarkdown(isPage func(string) bool) *markdownConverter {
	return &markdownConverter{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
				parser.WithASTTransformers(
					util.Prioritized(newLinkTransformer(isPage), 100),
				),
			),
			// Raw HTML is kept here; the registry sanitizes the result.
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Convert splits off YAML (---), TOML (+++) or JSON front matter and renders
// the remaining body.
func (c *markdownConverter) Convert(_ context.Context, src []byte) (Result, error) {
	var fm map[string]any
	body, err := frontmatter.Parse(bytes.NewReader(src), &fm)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse front matter: %w", err)
	}

	out, err := c.render(body)
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: out, Meta: metadataFromFields(fm)}, nil
}

func (c *markdownConverter) render(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}
	return buf.String(), nil
}

// metadataFromFields picks the keys the pipeline understands out of decoded
// front matter. It returns nil when none of them are present.
func metadataFromFields(fm map[string]any) *Metadata {
	if len(fm) == 0 {
		return nil
	}
	meta := &Metadata{}
	found := false
	if v, ok := fm["title"].(string); ok && strings.TrimSpace(v) != "" {
		meta.Title = strings.TrimSpace(v)
		found = true
	}
	if v, ok := fm["date"]; ok {
		if d, ok := ParseDate(v); ok {
			meta.Date = d
			found = true
		}
	}
	for _, key := range []string{"summary", "description"} {
		if v, ok := fm[key].(string); ok && v != "" {
			meta.Summary = strings.TrimSpace(v)
			found = true
			break
		}
	}
	if v, ok := fm["draft"].(bool); ok && v {
		meta.Draft = true
		found = true
	}
	if !found {
		return nil
	}
	return meta
}
