// Package json renders the Document for API consumers.
package json

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-tablegen/pkg/render"
)

// Name is the registry name of this renderer.
const Name = "json"

// Renderer encodes the Document plus its root attributes.
type Renderer struct{}

var _ render.Renderer = Renderer{}

func New() Renderer {
	return Renderer{}
}

func (Renderer) Name() string {
	return Name
}

func (Renderer) ContentType() string {
	return "application/json"
}

type envelope struct {
	render.Document
	Attributes map[string]string `json:"attributes"`
	Style      string            `json:"style,omitempty"`
}

func (Renderer) Render(ctx context.Context, doc render.Document, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if options.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(envelope{Document: doc, Attributes: doc.AttributeMap(), Style: doc.Style()}); err != nil {
		return nil, fmt.Errorf("json renderer: encode document: %w", err)
	}
	return buf.Bytes(), nil
}
