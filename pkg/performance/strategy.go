// Package performance picks a rendering strategy from the row count and
// partitions datasets for incremental client loading.
package performance

import (
	"strconv"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// Thresholds and sizing defaults. They are fixed per process.
const (
	FullRenderMax      = 50
	LazyLoadingMax     = 200
	InitialWindow      = 50
	LoadIncrement      = 25
	ChunkSize          = 50
	EstimatedRowHeight = 40
)

// Hint keys read by the client runtime: data attributes and CSS variables.
const (
	AttrStrategy       = "data-performance-strategy"
	AttrRowCount       = "data-row-count"
	AttrLoadedRows     = "data-loaded-rows"
	AttrTotalRows      = "data-total-rows"
	AttrLoadIncrement  = "data-load-increment"
	AttrTotalBatches   = "data-total-batches"
	AttrChunkSize      = "data-chunk-size"
	AttrTotalChunks    = "data-total-chunks"
	AttrRowHeight      = "data-estimated-row-height"
	CSSVarSpacerHeight = "--tablegen-spacer-height"
	CSSVarMaxHeight    = "--tablegen-max-height"
	CSSVarRowHeight    = "--tablegen-row-height"
)

// StrategyFor maps a row count onto a strategy.
func StrategyFor(rowCount int) model.Strategy {
	switch {
	case rowCount > LazyLoadingMax:
		return model.StrategyVirtualScroll
	case rowCount > FullRenderMax:
		return model.StrategyLazyLoading
	default:
		return model.StrategyFullRender
	}
}

// Classify builds the descriptor for rowCount. It depends on rowCount alone
// and returns fresh maps on every call.
func Classify(rowCount int) model.OptimizationDescriptor {
	if rowCount < 0 {
		rowCount = 0
	}
	return Describe(StrategyFor(rowCount), rowCount)
}

// Describe builds the descriptor for a strategy chosen elsewhere, such as a
// forced full render.
func Describe(strategy model.Strategy, rowCount int) model.OptimizationDescriptor {
	rowCount = max(rowCount, 0)
	d := model.OptimizationDescriptor{
		Strategy: strategy,
		DOMHints: map[string]string{
			AttrStrategy: string(strategy),
			AttrRowCount: strconv.Itoa(rowCount),
		},
		CSSHints: map[string]string{},
		JSHints:  map[string]any{},
	}

	switch strategy {
	case model.StrategyLazyLoading:
		loaded := min(rowCount, InitialWindow)
		batches := ceilDiv(rowCount-loaded, LoadIncrement)
		d.DOMHints[AttrLoadedRows] = strconv.Itoa(loaded)
		d.DOMHints[AttrTotalRows] = strconv.Itoa(rowCount)
		d.DOMHints[AttrLoadIncrement] = strconv.Itoa(LoadIncrement)
		d.DOMHints[AttrTotalBatches] = strconv.Itoa(batches)
		d.CSSHints[CSSVarMaxHeight] = px(InitialWindow * EstimatedRowHeight)
		d.JSHints["mode"] = "lazy"
		d.JSHints["loaded_rows"] = loaded
		d.JSHints["load_increment"] = LoadIncrement
		d.JSHints["total_batches"] = batches
	case model.StrategyVirtualScroll:
		chunks := ceilDiv(rowCount, ChunkSize)
		d.DOMHints[AttrTotalRows] = strconv.Itoa(rowCount)
		d.DOMHints[AttrChunkSize] = strconv.Itoa(ChunkSize)
		d.DOMHints[AttrTotalChunks] = strconv.Itoa(chunks)
		d.DOMHints[AttrRowHeight] = strconv.Itoa(EstimatedRowHeight)
		d.CSSHints[CSSVarSpacerHeight] = px(rowCount * EstimatedRowHeight)
		d.CSSHints[CSSVarRowHeight] = px(EstimatedRowHeight)
		d.JSHints["mode"] = "virtual"
		d.JSHints["chunk_size"] = ChunkSize
		d.JSHints["total_chunks"] = chunks
		d.JSHints["row_height"] = EstimatedRowHeight
	default:
		d.JSHints["mode"] = "full"
	}
	return d
}

func ceilDiv(n, size int) int {
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

func px(n int) string {
	return strconv.Itoa(n) + "px"
}
