package performance

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// Partition is a dataset sliced according to its strategy. Visible rows are
// rendered server-side; Pending slices are handed to the client loader in
// order (lazy-loading batches or the virtual-scroll chunks after the first).
type Partition struct {
	Descriptor model.OptimizationDescriptor
	Visible    []model.Record
	Pending    [][]model.Record
}

// Total returns the number of rows across visible and pending slices.
func (p Partition) Total() int {
	total := len(p.Visible)
	for _, slice := range p.Pending {
		total += len(slice)
	}
	return total
}

// Plan classifies rows and slices them. Full render keeps every row visible;
// lazy loading shows the initial window and batches the rest by
// LoadIncrement; virtual scroll materialises the first chunk.
func Plan(rows []model.Record) Partition {
	p := Partition{Descriptor: Classify(len(rows))}
	switch p.Descriptor.Strategy {
	case model.StrategyLazyLoading:
		window := min(len(rows), InitialWindow)
		p.Visible = rows[:window]
		p.Pending = split(rows[window:], LoadIncrement)
	case model.StrategyVirtualScroll:
		chunks := split(rows, ChunkSize)
		p.Visible = chunks[0]
		p.Pending = chunks[1:]
	default:
		p.Visible = rows
	}
	return p
}

// PlanFull keeps every row visible whatever the row count. It is used when a
// configuration turns the performance feature off.
func PlanFull(rows []model.Record) Partition {
	return Partition{Descriptor: Describe(model.StrategyFullRender, len(rows)), Visible: rows}
}

func split(rows []model.Record, size int) [][]model.Record {
	var out [][]model.Record
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		out = append(out, rows[start:end:end])
	}
	return out
}

// CellFunc converts one record value into a client batch cell.
type CellFunc func(col model.Column, value any, present bool) model.BatchCell

// BatchPayload converts the pending slices into the client batch payload.
// Each row carries one cell per column in column order.
func BatchPayload(p Partition, cols []model.Column, cell CellFunc) []model.Batch {
	if len(p.Pending) == 0 {
		return nil
	}
	if cell == nil {
		cell = literalCell
	}
	out := make([]model.Batch, 0, len(p.Pending))
	for _, slice := range p.Pending {
		batch := make(model.Batch, 0, len(slice))
		for _, rec := range slice {
			row := model.BatchRow{Type: model.RowKindData, Cells: make([]model.BatchCell, 0, len(cols))}
			for _, col := range cols {
				value, ok := rec.Get(col.Key)
				c := cell(col, value, ok)
				c.Value = encodable(c.Value)
				row.Cells = append(row.Cells, c)
			}
			batch = append(batch, row)
		}
		out = append(out, batch)
	}
	return out
}

func literalCell(col model.Column, value any, _ bool) model.BatchCell {
	c := model.CellOf(value)
	return model.BatchCell{
		Label:          c.Label,
		Value:          c.Value,
		FormattedValue: model.Stringify(value),
		Colspan:        c.Colspan,
		Rowspan:        c.Rowspan,
		Class:          c.Class,
	}
}

// encodable returns value unchanged when encoding/json accepts it and its
// text form otherwise. Non-finite floats become "NaN", "+Inf" or "-Inf".
func encodable(value any) any {
	switch v := value.(type) {
	case nil, string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		return v
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 32)
		}
		return v
	}
	if _, err := json.Marshal(value); err != nil {
		return model.Stringify(value)
	}
	return value
}
