// Package tablegen renders configurable data tables. The root package
// re-exports the common entry points; the pipeline lives under pkg/.
package tablegen

import (
	"context"
	"io/fs"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/orchestrator"
	"github.com/goliatone/go-tablegen/pkg/performance"
	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/renderers/html"
)

// Record is one data row.
type Record = model.Record

// Request describes one table render.
type Request = orchestrator.Request

// Result is a rendered table.
type Result = orchestrator.Result

// RenderOptions are per-request output options.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateHTML renders data as the named table type with the HTML renderer.
// config may be nil.
func GenerateHTML(ctx context.Context, tableType string, data []Record, config map[string]any, options ...orchestrator.Option) ([]byte, error) {
	result, err := orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		TableType: tableType,
		Config:    config,
		Data:      data,
		Renderer:  html.Name,
	})
	if err != nil {
		return nil, err
	}
	return result.Output, nil
}

// Classify returns the rendering strategy and client hints for rowCount rows.
func Classify(rowCount int) model.OptimizationDescriptor {
	return performance.Classify(rowCount)
}

// EmbeddedTemplates exposes the built-in HTML templates so callers can
// reuse or extend them without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return html.TemplatesFS()
}

// WithThemeSelector passes a go-theme selector through to the orchestrator.
func WithThemeSelector(selector theme.ThemeSelector) orchestrator.Option {
	return orchestrator.WithThemeSelector(selector)
}

// WithThemes registers manifests behind a static selector with the given
// defaults.
func WithThemes(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (orchestrator.Option, error) {
	selector, err := orchestrator.NewStaticThemes(defaultTheme, defaultVariant, manifests...)
	if err != nil {
		return nil, err
	}
	return orchestrator.WithThemeSelector(selector), nil
}
