// Package templates holds the dashboard components.
package templates

//go:generate templ generate

import (
	"bytes"
	"context"

	"github.com/a-h/templ"
)

// String renders c for an SSE patch.
func String(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
