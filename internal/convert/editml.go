package convert

import (
	"context"
	"fmt"

	"github.com/verkaro/editml-go"
)

// editMLConverter renders the clean view of an EditML document (all
// additions applied, deletions and comments dropped) as markdown. EditML
// carries no front matter, so it never reports metadata.
type editMLConverter struct {
	md *markdownConverter
}

func (c editMLConverter) Convert(_ context.Context, src []byte) (Result, error) {
	clean, err := cleanView(string(src))
	if err != nil {
		return Result{}, err
	}
	out, err := c.md.render([]byte(clean))
	if err != nil {
		return Result{}, err
	}
	return Result{HTML: out}, nil
}

// cleanView applies EditML markup and returns plain markdown.
func cleanView(src string) (string, error) {
	nodes, parseIssues := editml.Parse(src)
	for _, issue := range parseIssues {
		if issue.Severity == editml.SeverityError {
			return "", fmt.Errorf("editml parsing error: %s", issue.Message)
		}
	}
	clean, transformIssues := editml.TransformCleanView(nodes)
	for _, issue := range transformIssues {
		if issue.Severity == editml.SeverityError {
			return "", fmt.Errorf("editml transformation error: %s", issue.Message)
		}
	}
	return clean, nil
}
