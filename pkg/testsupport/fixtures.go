package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablegen/pkg/dataset"
	"github.com/goliatone/go-tablegen/pkg/model"
)

// MustLoadRecords reads a JSON or YAML data fixture into records.
func MustLoadRecords(t *testing.T, path string) []model.Record {
	t.Helper()

	rows, err := LoadRecords(path)
	if err != nil {
		t.Fatalf("load records: %v", err)
	}
	return rows
}

// LoadRecords reads a JSON or YAML data fixture.
func LoadRecords(path string) ([]model.Record, error) {
	return dataset.Load(path)
}

// DecodeRecords decodes a list of objects using the decoder for ext.
func DecodeRecords(ext string, data []byte) ([]model.Record, error) {
	return dataset.Decode(dataset.FormatFor(ext), data)
}

// Rows builds n flat records with the given keys. Values are "<key>-<i>".
func Rows(n int, keys ...string) []model.Record {
	rows := make([]model.Record, 0, n)
	for i := 0; i < n; i++ {
		rec := model.Record{}
		for _, key := range keys {
			rec.Set(key, fmt.Sprintf("%s-%d", key, i))
		}
		rows = append(rows, rec)
	}
	return rows
}

// WriteGolden writes arbitrary data as indented JSON when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	writeFile(t, path, payload)
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	writeFile(t, path, data)
	return true
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
