package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func TestRecordUnmarshalJSONPreservesOrder(t *testing.T) {
	t.Parallel()

	var rows []Record
	if err := json.Unmarshal([]byte(`[{"zeta":1,"alpha":"x","mid":null},{"b":2}]`), &rows); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if diff := cmp.Diff([]string{"zeta", "alpha", "mid"}, rows[0].Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
	value, ok := rows[0].Get("zeta")
	if !ok {
		t.Fatalf("expected zeta entry")
	}
	if got := Stringify(value); got != "1" {
		t.Fatalf("expected json number 1, got %q", got)
	}
}

func TestRecordUnmarshalDetectsCells(t *testing.T) {
	t.Parallel()

	var rec Record
	payload := `{"plan":{"value":"site.pdf","type":"file_display"},"owner":{"name":"Ops","team":"north"}}`
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	plan, _ := rec.Get("plan")
	cell, ok := plan.(Cell)
	if !ok {
		t.Fatalf("expected Cell for plan, got %T", plan)
	}
	if cell.Type != ColumnTypeFileDisplay {
		t.Fatalf("expected file_display type hint, got %q", cell.Type)
	}

	owner, _ := rec.Get("owner")
	nested, ok := owner.(Record)
	if !ok {
		t.Fatalf("expected nested Record for owner, got %T", owner)
	}
	if diff := cmp.Diff([]string{"name", "team"}, nested.Keys()); diff != "" {
		t.Fatalf("nested keys mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordUnmarshalYAMLPreservesOrder(t *testing.T) {
	t.Parallel()

	var rows []Record
	doc := "- name: Hall A\n  floor: 3\n  area: 120.5\n"
	if err := yaml.Unmarshal([]byte(doc), &rows); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if diff := cmp.Diff([]string{"name", "floor", "area"}, rows[0].Keys()); diff != "" {
		t.Fatalf("key order mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordMarshalJSONRoundTripOrder(t *testing.T) {
	t.Parallel()

	rec := RecordOf("b", 1, "a", "two")
	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"b":1,"a":"two"}` {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestIsEmptyValue(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value any
		want  bool
	}{
		{"nil", nil, true},
		{"blank", "   ", true},
		{"zero", 0, false},
		{"false", false, false},
		{"empty slice", []any{}, true},
		{"unset cell", Cell{}, true},
		{"labelled cell", Cell{Label: "Area"}, false},
		{"empty record", Record{}, true},
		{"text", "x", false},
	}
	for _, tc := range cases {
		if got := IsEmptyValue(tc.value); got != tc.want {
			t.Errorf("%s: IsEmptyValue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseLayoutType(t *testing.T) {
	t.Parallel()

	if got, ok := ParseLayoutType("Grouped-Rows"); !ok || got != LayoutGroupedRows {
		t.Fatalf("expected grouped_rows, got %q ok=%v", got, ok)
	}
	if got, ok := ParseLayoutType("bogus"); ok || got != LayoutKeyValuePairs {
		t.Fatalf("expected key_value_pairs fallback, got %q ok=%v", got, ok)
	}
}

func TestAsRecords(t *testing.T) {
	t.Parallel()

	children, ok := AsRecords([]any{RecordOf("a", 1), map[string]any{"b": 2}})
	if !ok || len(children) != 2 {
		t.Fatalf("expected two child records, got %d ok=%v", len(children), ok)
	}
	if _, ok := AsRecords([]any{"scalar"}); ok {
		t.Fatalf("expected scalar list to be rejected")
	}
}
