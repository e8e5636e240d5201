package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// execConverter runs an external program once per document, feeding the
// source on stdin and reading HTML from stdout (pandoc, nbconvert, ...).
// Metadata is never extracted from external output.
type execConverter struct {
	argv []string
}

func (c *execConverter) Convert(ctx context.Context, src []byte) (Result, error) {
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Result{}, fmt.Errorf("%s: %w: %s", c.argv[0], err, msg)
		}
		return Result{}, fmt.Errorf("%s: %w", c.argv[0], err)
	}
	return Result{HTML: stdout.String()}, nil
}
