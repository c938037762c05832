package html_test

import (
	"context"
	"strings"
	"testing"

	"github.com/goliatone/go-tablegen/pkg/failsafe"
	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/performance"
	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/renderers/html"
)

func newRenderer(t *testing.T) *html.Renderer {
	t.Helper()
	r, err := html.New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func sampleDocument() render.Document {
	return render.Document{
		TableID:   "tbl-1",
		TableType: "facility_basic",
		Layout:    model.LayoutStandardTable,
		Grid: model.Grid{
			Layout:  model.LayoutStandardTable,
			Caption: "Facilities",
			Headers: [][]model.GridCell{{
				{Text: "Name", Header: true, Key: "name", Width: 60},
				{Text: "Site", Header: true, Key: "site", Width: 40},
			}},
			Sections: []model.GridSection{{Rows: []model.GridRow{
				{Kind: model.RowKindData, Cells: []model.GridCell{
					{Text: "<North>", Key: "name"},
					{Text: "Not set", Unset: true, Class: "is-unset", Key: "site"},
				}},
				{Kind: model.RowKindData, Cells: []model.GridCell{
					{Text: "link", HTML: `<a href="https://example.com">link</a>`, Key: "name", Rowspan: 1},
					{Text: "B", Key: "site", Colspan: 2},
				}},
			}}},
		},
		Optimization: performance.Classify(2),
		Styling:      model.StylingSpec{Striped: true, RowClass: "row"},
	}
}

func TestRendererFullRender(t *testing.T) {
	t.Parallel()

	out, err := newRenderer(t).Render(context.Background(), sampleDocument(), render.RenderOptions{RuntimeScript: "/runtime/tablegen-loader.js"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)

	for _, want := range []string{
		`data-table-id="tbl-1"`,
		`data-table-type="facility_basic"`,
		`data-performance-strategy="full_render"`,
		`data-row-count="2"`,
		`<caption>Facilities</caption>`,
		`<th scope="col" data-key="name" style="width: 60%">Name</th>`,
		`&lt;North&gt;`,
		`<td class="is-unset" data-key="site">Not set</td>`,
		`<a href="https://example.com">link</a>`,
		`colspan="2"`,
		`tablegen-table--striped`,
		`class="tablegen-row--data row"`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
	for _, unwanted := range []string{"data-tablegen-batches", "tablegen-loader.js", `rowspan=`, "<!DOCTYPE"} {
		if strings.Contains(got, unwanted) {
			t.Fatalf("unexpected %q in full render output:\n%s", unwanted, got)
		}
	}
}

func TestRendererLazyLoadingEmbedsBatches(t *testing.T) {
	t.Parallel()

	doc := sampleDocument()
	doc.Optimization = performance.Classify(120)
	doc.Batches = []model.Batch{{{Cells: []model.BatchCell{{Value: "</script><b>x</b>"}}}}}

	out, err := newRenderer(t).Render(context.Background(), doc, render.RenderOptions{RuntimeScript: "/runtime/tablegen-loader.js"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		`<script type="application/json" data-tablegen-batches>`,
		`data-performance-strategy="lazy_loading"`,
		`data-total-batches="3"`,
		`--tablegen-max-height: 2000px`,
		`<script src="/runtime/tablegen-loader.js" defer></script>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
	if strings.Contains(got, "</script><b>") {
		t.Fatalf("batch payload must be script-safe:\n%s", got)
	}
}

func TestRendererFallbackAndErrorPanel(t *testing.T) {
	t.Parallel()

	rows := []model.Record{model.RecordOf("name", "North", "site", nil)}
	grid := failsafe.FallbackGrid(rows, "Not set")
	grid.Meta["error_id"] = "01HERR"
	doc := render.Document{
		TableID:  "tbl-9",
		Layout:   model.LayoutNestedTable,
		Grid:     grid,
		Fallback: true,
		Error: &failsafe.Payload{
			ErrorID:     "01HERR",
			UserMessage: "Broken config",
			ShowDetails: true,
			Errors:      []model.FieldError{{Field: "columns", Code: model.IssueMissingColumns, Message: "columns are required"}},
		},
		Optimization: performance.Classify(1),
	}

	out, err := newRenderer(t).Render(context.Background(), doc, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		html.DefaultFallbackNotice,
		`data-fallback="true"`,
		`data-error-id="01HERR"`,
		`role="alert"`,
		`Broken config`,
		`data-code="missing_columns"`,
		`<code>columns</code>: columns are required`,
		failsafe.FallbackClass,
		`North`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestRendererEmptyGridAndStandalone(t *testing.T) {
	t.Parallel()

	doc := render.Document{
		TableID:      "tbl-empty",
		Layout:       model.LayoutKeyValuePairs,
		Settings:     model.GlobalSettings{EmptyMessage: "Nothing here", Locale: "ja_JP"},
		Optimization: performance.Classify(0),
		Theme:        &render.Theme{Stylesheet: "/themes/acme/tablegen.css"},
	}
	out, err := newRenderer(t).Render(context.Background(), doc, render.RenderOptions{
		Standalone:  true,
		Stylesheets: []string{"/runtime/tablegen.css"},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	got := string(out)
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="ja">`,
		`<link rel="stylesheet" href="/runtime/tablegen.css">`,
		`<link rel="stylesheet" href="/themes/acme/tablegen.css">`,
		`<td colspan="1">Nothing here</td>`,
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestRendererCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newRenderer(t).Render(ctx, sampleDocument(), render.RenderOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}
