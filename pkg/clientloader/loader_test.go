package clientloader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-tablegen/pkg/model"
)

func batchOf(n int) model.Batch {
	batch := make(model.Batch, n)
	for i := range batch {
		batch[i] = model.BatchRow{Cells: []model.BatchCell{{Value: i}}}
	}
	return batch
}

func TestLoadNextSequencesBatches(t *testing.T) {
	t.Parallel()

	var events []BatchLoaded
	l := New([]model.Batch{batchOf(10), batchOf(10), batchOf(5)}, WithListener(func(e BatchLoaded) {
		events = append(events, e)
	}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		loaded, err := l.LoadNext(ctx)
		if err != nil || !loaded {
			t.Fatalf("load %d: loaded=%v err=%v", i+1, loaded, err)
		}
	}
	if got := l.RenderedRows(); got != 25 {
		t.Fatalf("expected 25 rendered rows, got %d", got)
	}
	if l.HasMoreBatches() {
		t.Fatalf("expected no more batches")
	}

	loaded, err := l.LoadNext(ctx)
	if err != nil || loaded {
		t.Fatalf("fourth trigger must be a no-op, got loaded=%v err=%v", loaded, err)
	}
	if got := l.RenderedRows(); got != 25 {
		t.Fatalf("no-op changed rendered rows to %d", got)
	}

	want := []BatchLoaded{
		{BatchLoaded: 1, BatchSize: 10, TotalBatches: 3, RemainingBatches: 2},
		{BatchLoaded: 2, BatchSize: 10, TotalBatches: 3, RemainingBatches: 1},
		{BatchLoaded: 3, BatchSize: 5, TotalBatches: 3, RemainingBatches: 0},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadNextDropsReentrantTrigger(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})
	l := New([]model.Batch{batchOf(2), batchOf(2)}, WithAnimator(func(context.Context, []model.BatchRow) error {
		close(started)
		<-release
		return nil
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := l.LoadNext(context.Background()); err != nil {
			t.Errorf("first load: %v", err)
		}
	}()

	<-started
	if !l.Loading() {
		t.Fatalf("expected loader to report an in-flight batch")
	}
	loaded, err := l.LoadNext(context.Background())
	if loaded || err != nil {
		t.Fatalf("re-entrant trigger must be dropped, got loaded=%v err=%v", loaded, err)
	}
	close(release)
	wg.Wait()

	if got := l.RenderedRows(); got != 2 {
		t.Fatalf("expected only the first batch, got %d rows", got)
	}
	if l.Loading() {
		t.Fatalf("guard must reset after completion")
	}
}

func TestLoadNextFailureResetsGuard(t *testing.T) {
	t.Parallel()

	boom := errors.New("network down")
	calls := 0
	l := New([]model.Batch{batchOf(3)},
		WithRenderedRows(50),
		WithFetcher(func(_ context.Context, index int) (model.Batch, error) {
			calls++
			if calls == 1 {
				return nil, boom
			}
			return batchOf(3), nil
		}),
	)

	_, err := l.LoadNext(context.Background())
	loadErr, ok := AsLoadError(err)
	if !ok {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if loadErr.Batch != 1 || loadErr.Hint != ReloadHint || !errors.Is(err, boom) {
		t.Fatalf("unexpected load error %+v", loadErr)
	}
	if l.Loading() {
		t.Fatalf("guard must reset after failure")
	}
	if !l.HasMoreBatches() {
		t.Fatalf("failed batch must stay pending")
	}

	if loaded, err := l.LoadNext(context.Background()); !loaded || err != nil {
		t.Fatalf("retry: loaded=%v err=%v", loaded, err)
	}
	if got := l.RenderedRows(); got != 53 {
		t.Fatalf("expected 53 rows, got %d", got)
	}
}

func TestDecodePayload(t *testing.T) {
	t.Parallel()

	batches, err := Decode([]byte(`[[{"cells":[{"value":"a","formatted_value":"A"}]}],[{"type":"group","cells":[]}]]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(batches) != 2 || batches[0][0].Cells[0].FormattedValue != "A" || batches[1][0].Type != "group" {
		t.Fatalf("unexpected batches %+v", batches)
	}
	if _, err := Decode([]byte(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
