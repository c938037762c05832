package columns

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablegen/pkg/model"
)

func keys(cols []model.Column) []string {
	out := make([]string, 0, len(cols))
	for _, col := range cols {
		out = append(out, col.Key)
	}
	return out
}

func TestComputeDiscoversDynamicColumns(t *testing.T) {
	t.Parallel()

	rows := []model.Record{
		model.RecordOf("a", 1, "b", 2),
		model.RecordOf("a", 3),
	}
	got := New().Compute(nil, rows, Options{Dynamic: true, Conditional: true})

	want := []model.Column{
		{Key: "a", Label: "A", Type: model.ColumnTypeText, Dynamic: true},
		{Key: "b", Label: "B", Type: model.ColumnTypeText, Dynamic: true},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("dynamic columns mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeKeysStayUnique(t *testing.T) {
	t.Parallel()

	static := []model.Column{
		{Key: "name", Label: "Name"},
		{Key: "status", Label: "Status"},
		{Key: "name", Label: "Duplicate"},
		{Key: ""},
	}
	rows := []model.Record{
		model.RecordOf("name", "A", "status", "open", "floor_count", 3),
		model.RecordOf("status", "closed", "name", "B", "due", model.Cell{Value: "2024-01-01", Type: model.ColumnTypeDate}),
	}
	got := New().Compute(static, rows, Options{Dynamic: true})

	if diff := cmp.Diff([]string{"name", "status", "floor_count", "due"}, keys(got)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	if got[0].Label != "Name" {
		t.Fatalf("expected first static definition kept, got %q", got[0].Label)
	}
	if got[2].Label != "Floor count" {
		t.Fatalf("expected humanised label, got %q", got[2].Label)
	}
	if got[3].Type != model.ColumnTypeDate {
		t.Fatalf("expected type hint from first occurrence, got %q", got[3].Type)
	}
}

func TestComputeDynamicDisabled(t *testing.T) {
	t.Parallel()

	rows := []model.Record{model.RecordOf("a", 1, "b", 2)}
	got := New().Compute([]model.Column{{Key: "a"}}, rows, Options{})
	if diff := cmp.Diff([]string{"a"}, keys(got)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeExcludesChildrenKey(t *testing.T) {
	t.Parallel()

	cfg := model.TableConfig{
		Layout:   model.LayoutSpec{Type: model.LayoutNestedTable},
		Features: model.DefaultFeatureFlags(),
	}
	rows := []model.Record{
		model.RecordOf("name", "Building", "children", []model.Record{model.RecordOf("name", "Floor 1")}),
	}
	got := New().Compute(nil, rows, OptionsFor(cfg))
	if diff := cmp.Diff([]string{"name"}, keys(got)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeSectionFilter(t *testing.T) {
	t.Parallel()

	static := []model.Column{
		{Key: "name", Section: "overview"},
		{Key: "address", Section: "location"},
		{Key: "area", Section: "overview"},
	}
	rows := []model.Record{model.RecordOf("name", "A", "address", "B", "extra", "C")}
	got := New().Compute(static, rows, Options{Dynamic: true, Section: "overview"})
	if diff := cmp.Diff([]string{"name", "area"}, keys(got)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeConditionalColumns(t *testing.T) {
	t.Parallel()

	static := []model.Column{
		{Key: "name"},
		{Key: "remarks", Condition: PredicateHasValue},
		{Key: "owner", Condition: PredicateHasValue},
		{Key: "internal", Condition: PredicateNever},
		{Key: "always", Condition: PredicateAlways},
		{Key: "cost", Condition: "cost > 1000"},
		{Key: "status", Condition: `all: status == "active"`},
		{Key: "region", Condition: `any: region == "north"`},
		{Key: "broken", Condition: "cost >"},
	}
	rows := []model.Record{
		model.RecordOf("name", "A", "remarks", "", "owner", "x", "cost", 500, "status", "active", "region", "south"),
		model.RecordOf("name", "B", "remarks", nil, "cost", 1500, "status", "closed", "region", "north"),
	}
	got := New().Compute(static, rows, Options{Conditional: true})

	want := []string{"name", "owner", "always", "cost", "region", "broken"}
	if diff := cmp.Diff(want, keys(got)); diff != "" {
		t.Fatalf("visible columns mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeConditionalDisabledKeepsColumns(t *testing.T) {
	t.Parallel()

	static := []model.Column{{Key: "hidden", Condition: PredicateNever}}
	got := New().Compute(static, nil, Options{})
	if len(got) != 1 {
		t.Fatalf("expected predicate ignored when conditional columns are off")
	}
}

func TestAssignWidthsSumToBudget(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 12; n++ {
		cols := make([]model.Column, n)
		var rec model.Record
		for i := range cols {
			key := fmt.Sprintf("c%d", i)
			cols[i] = model.Column{Key: key}
			rec.Set(key, strings.Repeat("x", (i*7)%23+1))
		}
		got := AssignWidths(cols, []model.Record{rec, model.RecordOf("c0", "施設名称の長い値")})

		sum := 0.0
		for _, col := range got {
			if col.Width <= 0 {
				t.Fatalf("n=%d: expected positive width for %s, got %v", n, col.Key, col.Width)
			}
			sum += col.Width
		}
		if math.Abs(sum-100) > 0.001 {
			t.Fatalf("n=%d: widths sum to %v", n, sum)
		}
	}
}

func TestAssignWidthsRespectsExplicitWidths(t *testing.T) {
	t.Parallel()

	cols := []model.Column{
		{Key: "id", Width: 10},
		{Key: "title"},
		{Key: "owner", Width: 20},
		{Key: "notes"},
	}
	rows := []model.Record{model.RecordOf("title", "Roof repair", "notes", "Replaced tiles over the east wing")}
	got := AssignWidths(cols, rows)

	if got[0].Width != 10 || got[2].Width != 20 {
		t.Fatalf("explicit widths changed: %+v", got)
	}
	auto := got[1].Width + got[3].Width
	if math.Abs(auto-70) > 0.001 {
		t.Fatalf("expected auto columns to share 70, got %v", auto)
	}
	if got[3].Width <= got[1].Width {
		t.Fatalf("expected longer content to get more width: %+v", got)
	}
	if cols[1].Width != 0 {
		t.Fatalf("AssignWidths mutated its input")
	}
}

func TestAssignWidthsFloorsAutoColumnsWhenBudgetIsSpent(t *testing.T) {
	t.Parallel()

	rows := []model.Record{model.RecordOf("title", "Roof repair", "notes", "Replaced tiles")}
	cases := map[string][]model.Column{
		"exhausted": {{Key: "id", Width: 60}, {Key: "title"}, {Key: "owner", Width: 40}, {Key: "notes"}},
		"overflow":  {{Key: "id", Width: 80}, {Key: "title"}, {Key: "owner", Width: 45}, {Key: "notes"}},
		"too small": {{Key: "id", Width: 92}, {Key: "title"}, {Key: "notes"}},
	}
	for name, cols := range cases {
		got := AssignWidths(cols, rows)
		for i, col := range got {
			if cols[i].Width > 0 {
				if col.Width != cols[i].Width {
					t.Fatalf("%s: explicit width of %s changed to %v", name, col.Key, col.Width)
				}
				continue
			}
			if col.Width != MinAutoWidth {
				t.Fatalf("%s: expected auto column %s to get %v, got %v", name, col.Key, MinAutoWidth, col.Width)
			}
		}
	}
}

func TestHumanize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"floor_count":  "Floor count",
		"document-url": "Document url",
		"a":            "A",
		"":             "",
		"__":           "__",
	}
	for in, want := range cases {
		if got := Humanize(in); got != want {
			t.Errorf("Humanize(%q) = %q, want %q", in, got, want)
		}
	}
}
