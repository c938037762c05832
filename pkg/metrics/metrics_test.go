package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/goliatone/go-tablegen/pkg/model"
)

func TestPrometheusRecordsEvents(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	rec, err := NewPrometheus(reg, "tg")
	if err != nil {
		t.Fatalf("NewPrometheus: %v", err)
	}

	rec.StrategySelected(model.StrategyVirtualScroll)
	rec.StrategySelected(model.StrategyVirtualScroll)
	rec.CacheLookup(true)
	rec.CacheLookup(false)
	rec.FallbackRendered(model.LayoutNestedTable, ReasonRender)

	if got := testutil.ToFloat64(rec.strategies.WithLabelValues("virtual_scroll")); got != 2 {
		t.Fatalf("expected 2 virtual_scroll selections, got %v", got)
	}
	if got := testutil.ToFloat64(rec.cache.WithLabelValues("hit")); got != 1 {
		t.Fatalf("expected 1 cache hit, got %v", got)
	}

	expected := `
# HELP tg_fallback_rendered_total Fallback tables or error panels emitted instead of the requested layout.
# TYPE tg_fallback_rendered_total counter
tg_fallback_rendered_total{layout_type="nested_table",reason="render"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "tg_fallback_rendered_total"); err != nil {
		t.Fatalf("unexpected fallback metrics: %v", err)
	}
}

func TestPrometheusDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	if _, err := NewPrometheus(reg, "tg"); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheus(reg, "tg"); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}

func TestOrNop(t *testing.T) {
	t.Parallel()

	if _, ok := OrNop(nil).(Nop); !ok {
		t.Fatalf("expected Nop for nil recorder")
	}
}
