package convert

import (
	"context"
	"html"
)

type textConverter struct{}

func (textConverter) Convert(_ context.Context, src []byte) (Result, error) {
	return Result{HTML: "<pre>" + html.EscapeString(string(src)) + "</pre>"}, nil
}
