package render

import (
	"context"
)

// Renderer converts a Document into bytes (HTML, plain text, JSON).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, doc Document, options RenderOptions) ([]byte, error)
}
