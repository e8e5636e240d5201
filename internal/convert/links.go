// internal/convert/links.go
package convert

import (
	"bytes"
	"path"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// linkTransformer rewrites relative links to other content documents so they
// point at the rendered .html page instead of the source file.
type linkTransformer struct {
	isPage func(name string) bool
}

func newLinkTransformer(isPage func(string) bool) parser.ASTTransformer {
	return &linkTransformer{isPage: isPage}
}

func (t *linkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Destination = t.rewrite(link.Destination)
		return ast.WalkContinue, nil
	})
}

func (t *linkTransformer) rewrite(dest []byte) []byte {
	if len(dest) == 0 || bytes.Contains(dest, []byte("://")) || bytes.HasPrefix(dest, []byte("mailto:")) {
		return dest
	}
	target, suffix := string(dest), ""
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target, suffix = target[:i], target[i:]
	}
	if target == "" || !t.isPage(target) {
		return dest
	}
	ext := path.Ext(target)
	return []byte(strings.TrimSuffix(target, ext) + ".html" + suffix)
}
