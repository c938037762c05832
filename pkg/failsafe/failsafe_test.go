package failsafe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablegen/pkg/model"
)

func tenRows() []model.Record {
	rows := make([]model.Record, 10)
	for i := range rows {
		rows[i] = model.RecordOf("id", i+1, "name", fmt.Sprintf("facility %d", i+1))
	}
	return rows
}

func TestGuardConvertsErrorsAndPanics(t *testing.T) {
	t.Parallel()

	scope := Scope{LayoutType: model.LayoutNestedTable, DataCount: 3, ColumnsCount: 2}
	sentinel := errors.New("broken row")

	_, err := Guard(context.Background(), scope, func(context.Context) (model.Grid, error) {
		return model.Grid{}, sentinel
	})
	if err == nil || !errors.Is(err, sentinel) || err.Panicked {
		t.Fatalf("expected wrapped returned error, got %+v", err)
	}

	_, err = Guard(context.Background(), scope, func(context.Context) (model.Grid, error) {
		panic("index out of range")
	})
	if err == nil || !err.Panicked || err.Stack == "" {
		t.Fatalf("expected recovered panic, got %+v", err)
	}
	var panicErr *PanicError
	if !errors.As(err, &panicErr) || panicErr.Value != "index out of range" {
		t.Fatalf("expected PanicError cause, got %v", err.Cause)
	}
	if !strings.Contains(err.Error(), "nested_table renderer panicked") {
		t.Fatalf("unexpected message %q", err.Error())
	}

	grid, err := Guard(context.Background(), scope, func(context.Context) (model.Grid, error) {
		return model.Grid{Caption: "ok"}, nil
	})
	if err != nil || grid.Caption != "ok" {
		t.Fatalf("expected pass-through, got %+v %v", grid, err)
	}
}

func TestRenderFallsBackWhenRendererThrowsMidway(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	h := NewHandler(WithLogger(logger), WithIDGenerator(func() string { return "01TEST" }))

	rows := tenRows()
	scope := Scope{LayoutType: model.LayoutStandardTable, DataCount: len(rows), ColumnsCount: 2}
	outcome := h.Render(context.Background(), scope, rows, "", func(context.Context) (model.Grid, error) {
		for i := range rows {
			if i == 2 {
				panic(fmt.Sprintf("bad row %d", i+1))
			}
		}
		return model.Grid{}, nil
	})

	if !outcome.Fallback || outcome.ErrorID != "01TEST" {
		t.Fatalf("expected fallback outcome, got %+v", outcome)
	}
	want := FallbackGrid(rows, "")
	want.Layout = model.LayoutStandardTable
	want.Meta["error_id"] = "01TEST"
	if diff := cmp.Diff(want, outcome.Grid); diff != "" {
		t.Fatalf("fallback grid mismatch (-want +got):\n%s", diff)
	}

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("decode log entry: %v (%s)", err, logs.String())
	}
	if entry["layout_type"] != "standard_table" || entry["data_count"] != float64(10) || entry["columns_count"] != float64(2) {
		t.Fatalf("missing render context in log: %v", entry)
	}
	if entry["level"] != "ERROR" {
		t.Fatalf("expected error level, got %v", entry["level"])
	}
}

func TestFallbackGridKeepsEveryTopLevelKey(t *testing.T) {
	t.Parallel()

	datasets := map[string][]model.Record{
		"empty": nil,
		"mismatched": {
			model.RecordOf("count", "many", "ok", true),
			model.RecordOf("count", 3.5, "extra", []any{1, "two", nil}),
		},
		"nested": {
			model.RecordOf("building", model.RecordOf("floor", model.RecordOf("room", model.RecordOf("desk", 1)))),
			model.RecordOf("cells", model.Cell{Label: "L", Colspan: 99}, "blank", ""),
		},
		"weird values": {
			model.RecordOf("ptr", (*int)(nil), "map", map[string]any{}, "err", errors.New("x"), "ch", make(chan int)),
		},
	}
	for name, rows := range datasets {
		grid := FallbackGrid(rows, "—")
		seen := map[string]bool{}
		for _, section := range grid.Sections {
			for _, row := range section.Rows {
				if len(row.Cells) != 2 {
					t.Fatalf("%s: expected two cells per row, got %d", name, len(row.Cells))
				}
				seen[row.Cells[0].Text] = true
				if row.Cells[1].Text == "" {
					t.Fatalf("%s: value cell for %q is blank", name, row.Cells[0].Text)
				}
			}
		}
		for _, rec := range rows {
			for _, key := range rec.Keys() {
				if !seen[key] {
					t.Fatalf("%s: key %q missing from fallback grid", name, key)
				}
			}
		}
		if grid.Meta["fallback"] != "true" || len(grid.Headers) != 1 {
			t.Fatalf("%s: expected fallback meta and key/value header", name)
		}
	}
}

func TestValidationPayload(t *testing.T) {
	t.Parallel()

	result := model.ValidationResult{
		Valid:    false,
		Errors:   []model.FieldError{{Field: "columns", Code: model.IssueMissingColumns, Message: "columns is required"}},
		Warnings: []string{"layout.type: unknown"},
	}

	hidden := NewHandler(WithIDGenerator(func() string { return "A" }), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	payload := hidden.Validation(context.Background(), "documents", result)
	if payload.ErrorID != "A" || payload.ShowDetails || payload.Errors != nil || payload.UserMessage != DefaultUserMessage {
		t.Fatalf("unexpected payload without details: %+v", payload)
	}

	shown := NewHandler(WithShowDetails(true), WithUserMessage("Check the table"), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	payload = shown.Validation(context.Background(), "documents", result)
	if len(payload.Errors) != 1 || len(payload.Warnings) != 1 || payload.UserMessage != "Check the table" {
		t.Fatalf("unexpected payload with details: %+v", payload)
	}
	if len(payload.ErrorID) != 26 {
		t.Fatalf("expected a ULID error id, got %q", payload.ErrorID)
	}
}
