package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFormatFor(t *testing.T) {
	t.Parallel()

	cases := map[string]Format{
		".yaml":              FormatYAML,
		".YML":               FormatYAML,
		"application/x-yaml": FormatYAML,
		".json":              FormatJSON,
		"application/json":   FormatJSON,
		"":                   FormatJSON,
	}
	for hint, want := range cases {
		if got := FormatFor(hint); got != want {
			t.Fatalf("FormatFor(%q) = %q, want %q", hint, got, want)
		}
	}
}

func TestDecodeKeepsKeyOrder(t *testing.T) {
	t.Parallel()

	fromJSON, err := Decode(FormatJSON, []byte(`[{"zeta":1,"alpha":"a"},{"alpha":"b"}]`))
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	fromYAML, err := Decode(FormatYAML, []byte("- zeta: 1\n  alpha: a\n- alpha: b\n"))
	if err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if len(fromJSON) != 2 || len(fromYAML) != 2 {
		t.Fatalf("expected two rows, got %d and %d", len(fromJSON), len(fromYAML))
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, fromJSON[0].Keys()); diff != "" {
		t.Fatalf("json key order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, fromYAML[0].Keys()); diff != "" {
		t.Fatalf("yaml key order (-want +got):\n%s", diff)
	}
}

func TestDecodeEmptyAndInvalid(t *testing.T) {
	t.Parallel()

	rows, err := Decode(FormatJSON, []byte("  "))
	if err != nil || len(rows) != 0 {
		t.Fatalf("expected empty dataset, got %v, %v", rows, err)
	}
	if _, err := Decode(FormatJSON, []byte(`{"a":1}`)); err == nil {
		t.Fatalf("expected error for a non-list document")
	}
	if _, err := Read(strings.NewReader("- [unterminated"), FormatYAML); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rows.yml")
	if err := os.WriteFile(path, []byte("- name: North\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if v, _ := rows[0].Get("name"); v != "North" {
		t.Fatalf("unexpected row %+v", rows[0])
	}
	if _, err := Load(""); err == nil {
		t.Fatalf("expected path error")
	}
}
