package performance

import (
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/testsupport"
)

func rows(n int) []model.Record {
	out := make([]model.Record, n)
	for i := range out {
		out[i] = model.RecordOf("id", i+1, "name", fmt.Sprintf("row %d", i+1))
	}
	return out
}

func TestClassifyThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n    int
		want model.Strategy
	}{
		{0, model.StrategyFullRender},
		{1, model.StrategyFullRender},
		{50, model.StrategyFullRender},
		{51, model.StrategyLazyLoading},
		{200, model.StrategyLazyLoading},
		{201, model.StrategyVirtualScroll},
		{10000, model.StrategyVirtualScroll},
		{-3, model.StrategyFullRender},
	}
	for _, tc := range cases {
		first := Classify(tc.n)
		if first.Strategy != tc.want {
			t.Errorf("Classify(%d) = %s, want %s", tc.n, first.Strategy, tc.want)
		}
		if diff := cmp.Diff(first, Classify(tc.n)); diff != "" {
			t.Errorf("Classify(%d) not stable (-first +second):\n%s", tc.n, diff)
		}
	}
}

func TestClassifyVirtualScrollHints(t *testing.T) {
	t.Parallel()

	d := Classify(250)
	want := map[string]string{
		AttrStrategy:    "virtual_scroll",
		AttrRowCount:    "250",
		AttrTotalRows:   "250",
		AttrChunkSize:   "50",
		AttrTotalChunks: "5",
		AttrRowHeight:   "40",
	}
	if diff := cmp.Diff(want, d.DOMHints); diff != "" {
		t.Fatalf("dom hints mismatch (-want +got):\n%s", diff)
	}
	if d.CSSHints[CSSVarSpacerHeight] != "10000px" {
		t.Fatalf("expected spacer height 10000px, got %q", d.CSSHints[CSSVarSpacerHeight])
	}
	if d.JSHints["total_chunks"] != 5 {
		t.Fatalf("expected total_chunks js hint, got %v", d.JSHints)
	}
}

func TestClassifyLazyLoadingHints(t *testing.T) {
	t.Parallel()

	d := Classify(120)
	want := map[string]string{
		AttrStrategy:      "lazy_loading",
		AttrRowCount:      "120",
		AttrLoadedRows:    "50",
		AttrTotalRows:     "120",
		AttrLoadIncrement: "25",
		AttrTotalBatches:  "3",
	}
	if diff := cmp.Diff(want, d.DOMHints); diff != "" {
		t.Fatalf("dom hints mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifyFullRenderHasOnlyRowCount(t *testing.T) {
	t.Parallel()

	d := Classify(12)
	want := map[string]string{AttrStrategy: "full_render", AttrRowCount: "12"}
	if diff := cmp.Diff(want, d.DOMHints); diff != "" {
		t.Fatalf("dom hints mismatch (-want +got):\n%s", diff)
	}
	if len(d.CSSHints) != 0 {
		t.Fatalf("expected no css hints, got %v", d.CSSHints)
	}
}

func TestPlanSlicesByStrategy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n           int
		visible     int
		pendingLens []int
	}{
		{n: 10, visible: 10},
		{n: 51, visible: 50, pendingLens: []int{1}},
		{n: 120, visible: 50, pendingLens: []int{25, 25, 20}},
		{n: 250, visible: 50, pendingLens: []int{50, 50, 50, 50}},
		{n: 0, visible: 0},
	}
	for _, tc := range cases {
		p := Plan(testsupport.Rows(tc.n, "id", "name"))
		if len(p.Visible) != tc.visible {
			t.Errorf("n=%d: visible %d, want %d", tc.n, len(p.Visible), tc.visible)
		}
		var lens []int
		for _, slice := range p.Pending {
			lens = append(lens, len(slice))
		}
		if diff := cmp.Diff(tc.pendingLens, lens); diff != "" {
			t.Errorf("n=%d: pending sizes mismatch (-want +got):\n%s", tc.n, diff)
		}
		if p.Total() != tc.n {
			t.Errorf("n=%d: partition lost rows, total %d", tc.n, p.Total())
		}
	}
}

func TestBatchPayloadValuesAreEncodable(t *testing.T) {
	t.Parallel()

	data := rows(60)
	data[55] = model.RecordOf("id", math.NaN(), "name", math.Inf(1))
	data[56] = model.RecordOf("id", float32(math.Inf(-1)), "name", model.RecordOf("bad", math.NaN()))
	data[57] = model.RecordOf("id", 2.5, "name", []any{"a", 1})

	payload := BatchPayload(Plan(data), []model.Column{{Key: "id"}, {Key: "name"}}, nil)
	if _, err := json.Marshal(payload); err != nil {
		t.Fatalf("batch payload must encode: %v", err)
	}

	var got [][]any
	for _, row := range payload[0][5:8] {
		got = append(got, []any{row.Cells[0].Value, row.Cells[1].Value})
	}
	want := [][]any{
		{"NaN", "+Inf"},
		{"-Inf", "bad: NaN"},
		{2.5, []any{"a", 1}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("encodable values mismatch (-want +got):\n%s", diff)
	}
}

func TestBatchPayloadFollowsColumnOrder(t *testing.T) {
	t.Parallel()

	p := Plan(rows(60))
	cols := []model.Column{{Key: "name"}, {Key: "id"}, {Key: "missing"}}
	payload := BatchPayload(p, cols, nil)

	if len(payload) != 1 || len(payload[0]) != 10 {
		t.Fatalf("expected one batch of 10 rows, got %d batches", len(payload))
	}
	first := payload[0][0]
	want := []model.BatchCell{
		{Value: "row 51", FormattedValue: "row 51"},
		{Value: 51, FormattedValue: "51"},
		{},
	}
	if diff := cmp.Diff(want, first.Cells); diff != "" {
		t.Fatalf("batch cells mismatch (-want +got):\n%s", diff)
	}
	if BatchPayload(Plan(rows(5)), cols, nil) != nil {
		t.Fatalf("full render should not produce a batch payload")
	}
}

func TestPlanFullKeepsEveryRow(t *testing.T) {
	t.Parallel()

	p := PlanFull(testsupport.Rows(250, "id"))
	if len(p.Visible) != 250 || len(p.Pending) != 0 {
		t.Fatalf("expected all rows visible, got %d visible and %d pending", len(p.Visible), len(p.Pending))
	}
	if p.Descriptor.Strategy != model.StrategyFullRender {
		t.Fatalf("strategy = %s, want full_render", p.Descriptor.Strategy)
	}
	if got := p.Descriptor.DOMHints[AttrRowCount]; got != "250" {
		t.Fatalf("row count hint = %q, want 250", got)
	}
}

func TestClassifyGolden(t *testing.T) {
	t.Parallel()

	path := filepath.Join("testdata", "descriptors.golden.json")
	got := []model.OptimizationDescriptor{Classify(10), Classify(120), Classify(250)}
	testsupport.WriteGolden(t, path, got)

	var want any
	if err := json.Unmarshal(testsupport.MustReadGolden(t, path), &want); err != nil {
		t.Fatalf("decode golden: %v", err)
	}
	encoded, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("encode descriptors: %v", err)
	}
	var normalised any
	if err := json.Unmarshal(encoded, &normalised); err != nil {
		t.Fatalf("decode descriptors: %v", err)
	}
	if diff := testsupport.CompareGolden(want, normalised); diff != "" {
		t.Fatalf("descriptor golden mismatch (-want +got):\n%s", diff)
	}
}
