package util

import (
	"path"
	"strings"
)

// ComputeBaseHref calculates the relative path to the site root
// so that CSS/JS links work correctly for pages at any depth.
// For example, a page at posts/a/b.html would get a BaseHref of "../../".
// outputPath is slash-separated and relative to the output root.
func ComputeBaseHref(outputPath string) string {
	dir := path.Dir(strings.TrimPrefix(outputPath, "/"))
	if dir == "." {
		return ""
	}
	depth := strings.Count(dir, "/") + 1
	return strings.Repeat("../", depth)
}
