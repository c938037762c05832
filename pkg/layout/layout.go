// Package layout holds the five layout algorithms that turn computed columns
// and dataset rows into a model.Grid.
package layout

import (
	"context"
	"fmt"
	"sync"

	"github.com/goliatone/go-tablegen/pkg/format"
	"github.com/goliatone/go-tablegen/pkg/model"
)

// Input bundles everything a layout renderer consumes.
type Input struct {
	Columns   []model.Column
	Rows      []model.Record
	Config    model.TableConfig
	Formatter *format.Formatter
}

func (in Input) formatter() *format.Formatter {
	if in.Formatter != nil {
		return in.Formatter
	}
	return format.ForConfig(in.Config)
}

// Renderer is one layout algorithm.
type Renderer interface {
	Type() model.LayoutType
	Render(ctx context.Context, in Input) (model.Grid, error)
}

// RendererFunc adapts a function into a Renderer for the given type.
type RendererFunc struct {
	Layout model.LayoutType
	Fn     func(ctx context.Context, in Input) (model.Grid, error)
}

func (r RendererFunc) Type() model.LayoutType { return r.Layout }

func (r RendererFunc) Render(ctx context.Context, in Input) (model.Grid, error) {
	return r.Fn(ctx, in)
}

// Registry maps layout types onto renderers. Every type has a built-in
// renderer; Register replaces it.
type Registry struct {
	mu        sync.RWMutex
	renderers map[model.LayoutType]Renderer
}

// NewRegistry returns a registry preloaded with the built-in renderers.
func NewRegistry() *Registry {
	r := &Registry{renderers: make(map[model.LayoutType]Renderer, 5)}
	for _, t := range model.LayoutTypes() {
		r.renderers[t] = builtin(t, r)
	}
	return r
}

// Register installs renderer for its Type, replacing the current one.
func (r *Registry) Register(renderer Renderer) error {
	if renderer == nil {
		return fmt.Errorf("layout: renderer is required")
	}
	t := renderer.Type()
	if !t.Valid() {
		return fmt.Errorf("layout: unknown layout type %q", t)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[t] = renderer
	return nil
}

// For returns the renderer for t. Unknown types get the key_value_pairs
// renderer.
func (r *Registry) For(t model.LayoutType) Renderer {
	switch t {
	case model.LayoutKeyValuePairs,
		model.LayoutGroupedRows,
		model.LayoutServiceTable,
		model.LayoutStandardTable,
		model.LayoutNestedTable:
	default:
		t = model.LayoutKeyValuePairs
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if renderer, ok := r.renderers[t]; ok {
		return renderer
	}
	return builtin(t, r)
}

func builtin(t model.LayoutType, r *Registry) Renderer {
	switch t {
	case model.LayoutGroupedRows:
		return GroupedRows{}
	case model.LayoutServiceTable:
		return ServiceTable{}
	case model.LayoutStandardTable:
		return StandardTable{registry: r}
	case model.LayoutNestedTable:
		return NestedTable{}
	default:
		return KeyValuePairs{}
	}
}

// SpanError reports inconsistent rowspan/colspan bookkeeping.
type SpanError struct {
	Row    int
	Column string
	Reason string
}

func (e *SpanError) Error() string {
	return fmt.Sprintf("layout: row %d column %q: %s", e.Row, e.Column, e.Reason)
}

func newGrid(t model.LayoutType, cfg model.TableConfig) model.Grid {
	return model.Grid{Layout: t, Caption: cfg.Settings.Caption}
}

func headerRow(cols []model.Column, cfg model.TableConfig) []model.GridCell {
	cells := make([]model.GridCell, 0, len(cols))
	for _, col := range cols {
		cells = append(cells, model.GridCell{
			Text:   col.DisplayLabel(),
			Header: true,
			Key:    col.Key,
			Class:  cfg.Styling.HeaderClass,
			Width:  col.Width,
		})
	}
	return cells
}

// dataCells formats one record across cols, dropping span directives the
// plain renderers do not honour.
func dataCells(f *format.Formatter, cols []model.Column, rec model.Record) []model.GridCell {
	cells := make([]model.GridCell, 0, len(cols))
	for _, col := range cols {
		value, _ := rec.Get(col.Key)
		cell := f.Cell(col, value)
		cell.Colspan, cell.Rowspan = 0, 0
		cells = append(cells, cell)
	}
	return cells
}

func dataRow(cfg model.TableConfig, cells []model.GridCell) model.GridRow {
	return model.GridRow{Kind: model.RowKindData, Class: cfg.Styling.RowClass, Cells: cells}
}

// nonEmpty drops records with zero entries.
func nonEmpty(rows []model.Record) []model.Record {
	out := make([]model.Record, 0, len(rows))
	for _, rec := range rows {
		if rec.Len() > 0 {
			out = append(out, rec)
		}
	}
	return out
}

func without(cols []model.Column, keys ...string) []model.Column {
	if len(keys) == 0 {
		return cols
	}
	drop := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		drop[key] = struct{}{}
	}
	out := make([]model.Column, 0, len(cols))
	for _, col := range cols {
		if _, ok := drop[col.Key]; !ok {
			out = append(out, col)
		}
	}
	return out
}

func columnFor(cols []model.Column, key string) model.Column {
	for _, col := range cols {
		if col.Key == key {
			return col
		}
	}
	return model.Column{Key: key, Label: key}
}
