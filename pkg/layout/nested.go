package layout

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// NestedTable renders child records under their parent up to the configured
// depth and honours cell merging. Merging comes from explicit Cell spans
// (when cell_merging or respect_explicit_spans is set) and from
// merging_config.merge_columns, which folds identical consecutive values into
// one rowspan cell.
//
// Open rowspans are tracked per column: open[j] counts the rows below that
// are still covered by a cell above, and those positions emit no cell.
type NestedTable struct{}

func (NestedTable) Type() model.LayoutType { return model.LayoutNestedTable }

// DefaultIndentClass prefixes the level class on the first cell of child rows.
const DefaultIndentClass = "tablegen-indent"

type flatRow struct {
	rec   model.Record
	depth int
}

func (NestedTable) Render(ctx context.Context, in Input) (model.Grid, error) {
	if err := ctx.Err(); err != nil {
		return model.Grid{}, err
	}
	cfg := in.Config
	f := in.formatter()

	childrenKey := ""
	if cfg.Layout.NestedData || cfg.Layout.Type == model.LayoutNestedTable {
		childrenKey = cfg.Layout.Nesting.ChildrenKey
		if childrenKey == "" {
			childrenKey = "children"
		}
	}
	maxDepth := cfg.Layout.Nesting.MaxDepth
	if maxDepth <= 0 {
		maxDepth = model.DefaultNestingDepth
	}
	indent := cfg.Layout.Nesting.IndentClass
	if indent == "" {
		indent = DefaultIndentClass
	}

	var flat []flatRow
	truncated := flatten(&flat, in.Rows, childrenKey, 0, maxDepth)
	cols := without(in.Columns, childrenKey)

	grid := newGrid(model.LayoutNestedTable, cfg)
	if cfg.Layout.ShowHeaders {
		grid.Headers = [][]model.GridCell{headerRow(cols, cfg)}
	}
	if truncated {
		grid.Meta = map[string]string{"max_depth_reached": strconv.Itoa(maxDepth)}
	}
	if len(flat) == 0 {
		return grid, nil
	}

	merge := make(map[string]bool, len(cfg.Layout.Merging.MergeColumns))
	for _, key := range cfg.Layout.Merging.MergeColumns {
		merge[key] = true
	}
	explicit := cfg.Layout.CellMerging || cfg.Layout.Merging.RespectExplicitSpans

	open := make([]int, len(cols))
	section := model.GridSection{}
	for i, fr := range flat {
		row := model.GridRow{Kind: model.RowKindData, Level: fr.depth, Class: cfg.Styling.RowClass}
		for j := 0; j < len(cols); {
			if open[j] > 0 {
				open[j]--
				j++
				continue
			}
			col := cols[j]
			value, _ := fr.rec.Get(col.Key)
			cell := f.Cell(col, value)
			if !explicit {
				cell.Colspan, cell.Rowspan = 0, 0
			}
			colspan := max(cell.Colspan, 1)
			rowspan := max(cell.Rowspan, 1)
			if rowspan == 1 && merge[col.Key] {
				rowspan = mergeRun(flat, i, col)
			}

			if j+colspan > len(cols) {
				return model.Grid{}, &SpanError{Row: i, Column: col.Key,
					Reason: fmt.Sprintf("colspan %d overflows %d columns", colspan, len(cols)-j)}
			}
			for k := j + 1; k < j+colspan; k++ {
				if open[k] > 0 {
					return model.Grid{}, &SpanError{Row: i, Column: cols[k].Key,
						Reason: "colspan collides with an open rowspan"}
				}
			}
			if i+rowspan > len(flat) {
				return model.Grid{}, &SpanError{Row: i, Column: col.Key,
					Reason: fmt.Sprintf("rowspan %d overflows the remaining %d rows", rowspan, len(flat)-i)}
			}
			if rowspan > 1 {
				for k := j; k < j+colspan; k++ {
					open[k] = rowspan - 1
				}
			}

			cell.Colspan, cell.Rowspan = 0, 0
			if colspan > 1 {
				cell.Colspan = colspan
			}
			if rowspan > 1 {
				cell.Rowspan = rowspan
			}
			if j == 0 && fr.depth > 0 {
				cell.Class = joinClasses(cell.Class, indent, indent+"-"+strconv.Itoa(fr.depth))
				cell.Level = fr.depth
			}
			row.Cells = append(row.Cells, cell)
			j += colspan
		}
		section.Rows = append(section.Rows, row)
	}
	grid.Sections = []model.GridSection{section}
	return grid, nil
}

// flatten appends rows depth-first and reports whether children were cut off
// at maxDepth.
func flatten(out *[]flatRow, rows []model.Record, childrenKey string, depth, maxDepth int) bool {
	truncated := false
	for _, rec := range rows {
		if rec.Len() == 0 {
			continue
		}
		*out = append(*out, flatRow{rec: rec, depth: depth})
		if childrenKey == "" {
			continue
		}
		value, ok := rec.Get(childrenKey)
		if !ok {
			continue
		}
		children, ok := model.AsRecords(value)
		if !ok || len(children) == 0 {
			continue
		}
		if depth+1 >= maxDepth {
			truncated = true
			continue
		}
		if flatten(out, children, childrenKey, depth+1, maxDepth) {
			truncated = true
		}
	}
	return truncated
}

// mergeRun counts the rows starting at i that share the same non-empty value
// for col at the same depth.
func mergeRun(flat []flatRow, i int, col model.Column) int {
	first, _ := flat[i].rec.Get(col.Key)
	if model.IsEmptyValue(first) {
		return 1
	}
	want := model.Stringify(first)
	n := 1
	for k := i + 1; k < len(flat); k++ {
		if flat[k].depth != flat[i].depth {
			break
		}
		next, _ := flat[k].rec.Get(col.Key)
		if model.IsEmptyValue(next) || model.Stringify(next) != want {
			break
		}
		if c, ok := next.(model.Cell); ok && (c.Colspan > 1 || c.Rowspan > 1) {
			break
		}
		n++
	}
	return n
}

func joinClasses(classes ...string) string {
	out := ""
	for _, c := range classes {
		if c == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += c
	}
	return out
}
