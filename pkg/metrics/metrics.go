// Package metrics records pipeline events. Recorder is consumed by the
// resolver, the error handler and the orchestrator; Prometheus backs it in
// the server while tests and library callers default to Nop.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// Recorder receives pipeline events.
type Recorder interface {
	StrategySelected(strategy model.Strategy)
	FallbackRendered(layout model.LayoutType, reason string)
	ValidationFailed(tableType string)
	CacheLookup(hit bool)
	RenderDuration(layout model.LayoutType, elapsed time.Duration)
}

// Nop discards every event.
type Nop struct{}

func (Nop) StrategySelected(model.Strategy) {}
func (Nop) FallbackRendered(model.LayoutType, string) {}
func (Nop) ValidationFailed(string) {}
func (Nop) CacheLookup(bool) {}
func (Nop) RenderDuration(model.LayoutType, time.Duration) {}

// Fallback reasons reported through FallbackRendered.
const (
	ReasonValidation = "validation"
	ReasonRender     = "render"
)

// Prometheus exports pipeline events as prometheus collectors.
type Prometheus struct {
	strategies *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
	validation *prometheus.CounterVec
	cache      *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewPrometheus builds the collectors under namespace and registers them on
// reg. A nil reg skips registration.
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Prometheus, error) {
	if namespace == "" {
		namespace = "tablegen"
	}
	p := &Prometheus{
		strategies: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "strategy_selected_total",
				Help:      "Renders by performance strategy.",
			},
			[]string{"strategy"},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fallback_rendered_total",
				Help:      "Fallback tables or error panels emitted instead of the requested layout.",
			},
			[]string{"layout_type", "reason"},
		),
		validation: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "validation_failed_total",
				Help:      "Resolved configurations that failed validation.",
			},
			[]string{"table_type"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "resolve_cache_lookups_total",
				Help:      "Resolver cache lookups by result.",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "layout_render_seconds",
				Help:      "Layout renderer latency.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"layout_type"},
		),
	}
	if reg == nil {
		return p, nil
	}
	for _, c := range p.Collectors() {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register collector: %w", err)
		}
	}
	return p, nil
}

// Collectors lists every collector owned by p.
func (p *Prometheus) Collectors() []prometheus.Collector {
	return []prometheus.Collector{p.strategies, p.fallbacks, p.validation, p.cache, p.duration}
}

func (p *Prometheus) StrategySelected(strategy model.Strategy) {
	p.strategies.WithLabelValues(string(strategy)).Inc()
}

func (p *Prometheus) FallbackRendered(layout model.LayoutType, reason string) {
	p.fallbacks.WithLabelValues(string(layout), reason).Inc()
}

func (p *Prometheus) ValidationFailed(tableType string) {
	if tableType == "" {
		tableType = "none"
	}
	p.validation.WithLabelValues(tableType).Inc()
}

func (p *Prometheus) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cache.WithLabelValues(result).Inc()
}

func (p *Prometheus) RenderDuration(layout model.LayoutType, elapsed time.Duration) {
	p.duration.WithLabelValues(string(layout)).Observe(elapsed.Seconds())
}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}
