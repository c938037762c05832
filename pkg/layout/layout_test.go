package layout

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablegen/pkg/format"
	"github.com/goliatone/go-tablegen/pkg/model"
)

func render(t *testing.T, cfg model.TableConfig, cols []model.Column, rows []model.Record) model.Grid {
	t.Helper()
	grid, err := NewRegistry().For(cfg.Layout.Type).Render(context.Background(), Input{
		Columns:   cols,
		Rows:      rows,
		Config:    cfg,
		Formatter: format.New(cfg.Settings),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return grid
}

func texts(row model.GridRow) []string {
	out := make([]string, 0, len(row.Cells))
	for _, cell := range row.Cells {
		out = append(out, cell.Text)
	}
	return out
}

func TestRegistryDefaultsUnknownTypes(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, lt := range model.LayoutTypes() {
		if got := reg.For(lt).Type(); got != lt {
			t.Fatalf("For(%q) returned %q", lt, got)
		}
	}
	if got := reg.For("bogus").Type(); got != model.LayoutKeyValuePairs {
		t.Fatalf("expected key_value_pairs fallback, got %q", got)
	}

	custom := RendererFunc{Layout: model.LayoutServiceTable, Fn: func(context.Context, Input) (model.Grid, error) {
		return model.Grid{Caption: "custom"}, nil
	}}
	if err := reg.Register(custom); err != nil {
		t.Fatalf("register: %v", err)
	}
	grid, _ := reg.For(model.LayoutServiceTable).Render(context.Background(), Input{})
	if grid.Caption != "custom" {
		t.Fatalf("expected registered renderer to replace the built-in")
	}
	if err := reg.Register(RendererFunc{Layout: "spiral"}); err == nil {
		t.Fatalf("expected error for unknown layout type")
	}
}

func TestKeyValuePairsWidensLastCell(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{Type: model.LayoutKeyValuePairs, ColumnsPerRow: 2}}
	cols := []model.Column{{Key: "code", Label: "Code"}, {Key: "name", Label: "Name"}, {Key: "address", Label: "Address"}}
	rows := []model.Record{
		model.RecordOf("code", "F-01", "name", "North hall", "address", model.Cell{Label: "Location", Value: "1-2-3"}),
		{},
	}
	grid := render(t, cfg, cols, rows)

	if len(grid.Sections) != 1 {
		t.Fatalf("expected empty record skipped, got %d sections", len(grid.Sections))
	}
	section := grid.Sections[0]
	if diff := cmp.Diff([]string{"Code", "F-01", "Name", "North hall"}, texts(section.Rows[0])); diff != "" {
		t.Fatalf("first row mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Location", "1-2-3"}, texts(section.Rows[1])); diff != "" {
		t.Fatalf("second row mismatch (-want +got):\n%s", diff)
	}
	if got := section.Rows[1].Cells[1].Colspan; got != 3 {
		t.Fatalf("expected last value cell to span 3, got %d", got)
	}
}

func TestUnknownLayoutRendersLikeKeyValuePairs(t *testing.T) {
	t.Parallel()

	cols := []model.Column{{Key: "a"}, {Key: "b"}}
	rows := []model.Record{model.RecordOf("a", 1, "b", "x"), model.RecordOf("a", 2)}

	bogus := render(t, model.TableConfig{Layout: model.LayoutSpec{Type: "bogus"}}, cols, rows)
	kv := render(t, model.TableConfig{Layout: model.LayoutSpec{Type: model.LayoutKeyValuePairs}}, cols, rows)
	if diff := cmp.Diff(kv, bogus); diff != "" {
		t.Fatalf("bogus layout differs from key_value_pairs (-kv +bogus):\n%s", diff)
	}
}

func TestStandardTableUnsetPlaceholder(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{Type: model.LayoutStandardTable, ShowHeaders: true}}
	cols := []model.Column{{Key: "a", Label: "A"}, {Key: "b", Label: "B"}}
	rows := []model.Record{model.RecordOf("a", 1, "b", 2), model.RecordOf("a", 3)}
	grid := render(t, cfg, cols, rows)

	if diff := cmp.Diff([]string{"A", "B"}, texts(model.GridRow{Cells: grid.Headers[0]})); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	second := grid.Sections[0].Rows[1]
	if second.Cells[0].Text != "3" {
		t.Fatalf("expected 3, got %q", second.Cells[0].Text)
	}
	unset := second.Cells[1]
	if !unset.Unset || unset.Text != model.DefaultUnsetLabel || !strings.Contains(unset.Class, format.UnsetClass) {
		t.Fatalf("expected unset placeholder, got %+v", unset)
	}
}

func TestStandardTableDelegatesToNested(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{
		Type:        model.LayoutStandardTable,
		CellMerging: true,
		Merging:     model.MergingConfig{MergeColumns: []string{"site"}},
	}}
	cols := []model.Column{{Key: "site"}, {Key: "room"}}
	rows := []model.Record{
		model.RecordOf("site", "A", "room", "101"),
		model.RecordOf("site", "A", "room", "102"),
	}
	grid := render(t, cfg, cols, rows)
	if grid.Meta["delegated_to"] != "nested_table" || grid.Layout != model.LayoutStandardTable {
		t.Fatalf("expected delegation metadata, got %+v", grid.Meta)
	}
	if grid.Sections[0].Rows[0].Cells[0].Rowspan != 2 {
		t.Fatalf("expected merged site cell")
	}
}

func TestGroupedRowsHierarchical(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{
		Type:                model.LayoutGroupedRows,
		GroupBy:             []string{"category", "year"},
		MultiLevelGrouping:  true,
		HierarchicalHeaders: true,
		ShowHeaders:         true,
	}}
	cols := []model.Column{{Key: "category", Label: "Category"}, {Key: "year", Label: "Year"}, {Key: "work", Label: "Work"}}
	rows := []model.Record{
		model.RecordOf("category", "Roof", "year", 2023, "work", "Inspection"),
		model.RecordOf("category", "HVAC", "year", 2023, "work", "Filter"),
		model.RecordOf("category", "Roof", "year", 2024, "work", "Repair"),
		model.RecordOf("category", "Roof", "year", 2023, "work", "Cleaning"),
	}
	grid := render(t, cfg, cols, rows)

	if diff := cmp.Diff([]string{"Work"}, texts(model.GridRow{Cells: grid.Headers[0]})); diff != "" {
		t.Fatalf("group columns should leave the header (-want +got):\n%s", diff)
	}
	if len(grid.Sections) != 2 || grid.Sections[0].Title != "Roof" || grid.Sections[1].Title != "HVAC" {
		t.Fatalf("expected first-seen group order, got %+v", grid.Sections)
	}

	var got []string
	for _, row := range grid.Sections[0].Rows {
		got = append(got, row.Kind+":"+row.Cells[0].Text)
	}
	want := []string{
		"group:Category: Roof (3)",
		"group:Year: 2023 (2)",
		"data:Inspection",
		"data:Cleaning",
		"group:Year: 2024 (1)",
		"data:Repair",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("roof section mismatch (-want +got):\n%s", diff)
	}
	if grid.Sections[0].Rows[1].Level != 1 {
		t.Fatalf("expected nested group level 1")
	}
}

func TestGroupedRowsSingleLevelCombinedHeader(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{
		Type:    model.LayoutGroupedRows,
		GroupBy: []string{"category", "year"},
	}}
	cols := []model.Column{{Key: "category"}, {Key: "work"}}
	rows := []model.Record{
		model.RecordOf("category", "Roof", "work", "A"),
		model.RecordOf("work", "B"),
	}
	grid := render(t, cfg, cols, rows)

	if len(grid.Sections) != 2 {
		t.Fatalf("expected two groups, got %d", len(grid.Sections))
	}
	if got := grid.Sections[1].Rows[0].Cells[0].Text; got != model.DefaultUnsetLabel+" (1)" {
		t.Fatalf("expected rows without a group value grouped under the unset label, got %q", got)
	}
	if grid.Headers != nil {
		t.Fatalf("headers should be hidden when show_headers is false")
	}
}

func TestServiceTableRowspan(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{
		Type:                 model.LayoutServiceTable,
		ServiceHeaderKey:     "category",
		ServiceHeaderRowspan: true,
		ShowHeaders:          true,
	}}
	cols := []model.Column{{Key: "category", Label: "Service"}, {Key: "vendor", Label: "Vendor"}}
	rows := []model.Record{
		model.RecordOf("category", "Cleaning", "vendor", "A"),
		model.RecordOf("category", "Security", "vendor", "B"),
		model.RecordOf("category", "Cleaning", "vendor", "C"),
	}
	grid := render(t, cfg, cols, rows)

	if diff := cmp.Diff([]string{"Service", "Vendor"}, texts(model.GridRow{Cells: grid.Headers[0]})); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
	cleaning := grid.Sections[0]
	if diff := cmp.Diff([]string{"Cleaning", "A"}, texts(cleaning.Rows[0])); diff != "" {
		t.Fatalf("first row mismatch (-want +got):\n%s", diff)
	}
	if cleaning.Rows[0].Cells[0].Rowspan != 2 {
		t.Fatalf("expected category to span 2 rows")
	}
	if diff := cmp.Diff([]string{"C"}, texts(cleaning.Rows[1])); diff != "" {
		t.Fatalf("second row mismatch (-want +got):\n%s", diff)
	}
	if grid.Sections[1].Rows[0].Cells[0].Rowspan != 0 {
		t.Fatalf("single-row category should not carry a rowspan")
	}
}

func TestServiceTableHeaderRows(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{Type: model.LayoutServiceTable}}
	cols := []model.Column{{Key: "category"}, {Key: "vendor"}, {Key: "fee"}}
	rows := []model.Record{model.RecordOf("category", "Cleaning", "vendor", "A", "fee", 10)}
	grid := render(t, cfg, cols, rows)

	header := grid.Sections[0].Rows[0]
	if header.Kind != model.RowKindCategory || header.Cells[0].Colspan != 2 {
		t.Fatalf("expected full-width category row, got %+v", header)
	}
}

func TestNestedTableRecursesAndIndents(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{
		Type:    model.LayoutNestedTable,
		Nesting: model.NestingConfig{ChildrenKey: "children", MaxDepth: 2},
	}}
	cols := []model.Column{{Key: "name"}, {Key: "area"}}
	rows := []model.Record{
		model.RecordOf("name", "Building", "children", []model.Record{
			model.RecordOf("name", "Floor 1", "area", 100, "children", []any{
				map[string]any{"name": "Room 101"},
			}),
		}),
	}
	grid := render(t, cfg, cols, rows)

	body := grid.Sections[0].Rows
	if len(body) != 2 {
		t.Fatalf("expected depth capped at 2 levels, got %d rows", len(body))
	}
	if body[1].Level != 1 || !strings.Contains(body[1].Cells[0].Class, "tablegen-indent-1") {
		t.Fatalf("expected indented child row, got %+v", body[1])
	}
	if grid.Meta["max_depth_reached"] != "2" {
		t.Fatalf("expected truncation metadata, got %+v", grid.Meta)
	}
}

func TestNestedTableSpanBookkeeping(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{
		Type:        model.LayoutNestedTable,
		CellMerging: true,
		Merging:     model.MergingConfig{MergeColumns: []string{"site"}},
	}}
	cols := []model.Column{{Key: "site"}, {Key: "a"}, {Key: "b"}}
	rows := []model.Record{
		model.RecordOf("site", "North", "a", model.Cell{Value: "wide", Colspan: 2}),
		model.RecordOf("site", "North", "a", model.Cell{Value: "tall", Rowspan: 2}, "b", "x"),
		model.RecordOf("site", "South", "a", "hidden", "b", "y"),
	}
	grid := render(t, cfg, cols, rows)

	var got [][]string
	for _, row := range grid.Sections[0].Rows {
		got = append(got, texts(row))
	}
	want := [][]string{
		{"North", "wide"},
		{"tall", "x"},
		{"South", "y"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("span layout mismatch (-want +got):\n%s", diff)
	}
	first := grid.Sections[0].Rows[0]
	if first.Cells[0].Rowspan != 2 || first.Cells[1].Colspan != 2 {
		t.Fatalf("unexpected spans on first row: %+v", first.Cells)
	}
}

func TestNestedTableSpanErrors(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{Type: model.LayoutNestedTable, CellMerging: true}}
	cols := []model.Column{{Key: "a"}, {Key: "b"}}

	cases := map[string][]model.Record{
		"colspan overflow": {model.RecordOf("a", model.Cell{Value: "x", Colspan: 3})},
		"rowspan overflow": {model.RecordOf("a", model.Cell{Value: "x", Rowspan: 2})},
		"collision": {
			model.RecordOf("a", "1", "b", model.Cell{Value: "tall", Rowspan: 2}),
			model.RecordOf("a", model.Cell{Value: "wide", Colspan: 2}),
		},
	}
	for name, rows := range cases {
		_, err := NewRegistry().For(model.LayoutNestedTable).Render(context.Background(), Input{
			Columns: cols,
			Rows:    rows,
			Config:  cfg,
		})
		var spanErr *SpanError
		if !errors.As(err, &spanErr) {
			t.Fatalf("%s: expected SpanError, got %v", name, err)
		}
	}
}

func TestNestedTableIgnoresSpansWithoutMerging(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{Layout: model.LayoutSpec{Type: model.LayoutNestedTable}}
	rows := []model.Record{model.RecordOf("a", model.Cell{Value: "x", Colspan: 5})}
	grid := render(t, cfg, []model.Column{{Key: "a"}}, rows)
	if grid.Sections[0].Rows[0].Cells[0].Colspan != 0 {
		t.Fatalf("explicit spans should be ignored without cell merging")
	}
}

func TestRenderHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, lt := range model.LayoutTypes() {
		if _, err := NewRegistry().For(lt).Render(ctx, Input{}); !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: expected context error, got %v", lt, err)
		}
	}
}
