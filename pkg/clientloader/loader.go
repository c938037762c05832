// Package clientloader models the browser incremental loader: batches are
// appended strictly in order, one at a time, and triggers arriving while a
// batch is in flight are dropped.
//
// The browser runtime in RuntimeAssetsFS implements the same contract in
// JavaScript; this package drives it from Go for previews and tests.
package clientloader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// ReloadHint is the recovery action attached to every LoadError.
const ReloadHint = "Reload the page to try again."

// BatchLoaded is emitted after each successful append.
type BatchLoaded struct {
	BatchLoaded      int `json:"batch_loaded"`
	BatchSize        int `json:"batch_size"`
	TotalBatches     int `json:"total_batches"`
	RemainingBatches int `json:"remaining_batches"`
}

// LoadError reports a failed fetch or append. The loader stays usable and
// the same batch is retried on the next trigger.
type LoadError struct {
	Batch int
	Hint  string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("clientloader: load batch %d: %v", e.Batch, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// FetchFunc returns batch index. The default fetcher reads from the batches
// given to New.
type FetchFunc func(ctx context.Context, index int) (model.Batch, error)

// AnimateFunc runs after rows are appended and before the load completes,
// e.g. a staggered fade-in.
type AnimateFunc func(ctx context.Context, rows []model.BatchRow) error

// Listener observes BatchLoaded events.
type Listener func(BatchLoaded)

type Option func(*Loader)

// WithFetcher replaces the in-memory fetcher.
func WithFetcher(fn FetchFunc) Option {
	return func(l *Loader) {
		if fn != nil {
			l.fetch = fn
		}
	}
}

// WithAnimator sets the function awaited after each append.
func WithAnimator(fn AnimateFunc) Option {
	return func(l *Loader) {
		l.animate = fn
	}
}

// WithListener subscribes fn to BatchLoaded events.
func WithListener(fn Listener) Option {
	return func(l *Loader) {
		if fn != nil {
			l.listeners = append(l.listeners, fn)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithRenderedRows seeds the rows already rendered server-side.
func WithRenderedRows(n int) Option {
	return func(l *Loader) {
		l.initial = max(n, 0)
	}
}

// Loader appends pending batches one at a time.
type Loader struct {
	batches   []model.Batch
	fetch     FetchFunc
	animate   AnimateFunc
	listeners []Listener
	logger    *slog.Logger
	initial   int

	loading atomic.Bool

	mu   sync.Mutex
	next int
	rows []model.BatchRow
}

// New builds a loader over the pending batches of a lazy-loading table.
func New(batches []model.Batch, options ...Option) *Loader {
	l := &Loader{batches: batches, logger: slog.Default()}
	l.fetch = l.fromMemory
	for _, opt := range options {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Decode parses the batch payload embedded in rendered HTML.
func Decode(payload []byte) ([]model.Batch, error) {
	var batches []model.Batch
	if err := json.Unmarshal(payload, &batches); err != nil {
		return nil, fmt.Errorf("clientloader: decode batches: %w", err)
	}
	return batches, nil
}

func (l *Loader) fromMemory(_ context.Context, index int) (model.Batch, error) {
	if index < 0 || index >= len(l.batches) {
		return nil, fmt.Errorf("batch %d out of range", index)
	}
	return l.batches[index], nil
}

// LoadNext appends the next batch. It reports false without error when no
// batch remains or another load is still running. A failed fetch leaves the
// batch pending; a failed animation keeps the appended rows.
func (l *Loader) LoadNext(ctx context.Context) (bool, error) {
	if !l.loading.CompareAndSwap(false, true) {
		l.logger.Debug("batch load already in progress; trigger dropped")
		return false, nil
	}
	defer l.loading.Store(false)

	l.mu.Lock()
	index := l.next
	l.mu.Unlock()
	if index >= len(l.batches) {
		return false, nil
	}

	batch, err := l.fetch(ctx, index)
	if err != nil {
		return false, l.fail(index, err)
	}

	l.mu.Lock()
	l.rows = append(l.rows, batch...)
	l.next = index + 1
	l.mu.Unlock()

	if l.animate != nil {
		if err := l.animate(ctx, batch); err != nil {
			return true, l.fail(index, err)
		}
	}

	event := BatchLoaded{
		BatchLoaded:      index + 1,
		BatchSize:        len(batch),
		TotalBatches:     len(l.batches),
		RemainingBatches: len(l.batches) - index - 1,
	}
	for _, listener := range l.listeners {
		listener(event)
	}
	return true, nil
}

func (l *Loader) fail(index int, err error) error {
	loadErr := &LoadError{Batch: index + 1, Hint: ReloadHint, Err: err}
	l.logger.Warn("batch load failed", "batch", index+1, "error", err)
	return loadErr
}

// Loading reports whether a batch is in flight.
func (l *Loader) Loading() bool {
	return l.loading.Load()
}

func (l *Loader) HasMoreBatches() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next < len(l.batches)
}

// RenderedRows counts server-rendered rows plus every appended row.
func (l *Loader) RenderedRows() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.initial + len(l.rows)
}

// Rows returns a copy of the appended rows.
func (l *Loader) Rows() []model.BatchRow {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]model.BatchRow(nil), l.rows...)
}

// AsLoadError extracts a LoadError from err.
func AsLoadError(err error) (*LoadError, bool) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr, true
	}
	return nil, false
}
