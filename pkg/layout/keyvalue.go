package layout

import (
	"context"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// KeyValuePairs renders each record as a detail sheet: label/value pairs,
// ColumnsPerRow pairs per visual row. The last value cell of a short row
// widens to fill the remaining pair slots.
type KeyValuePairs struct{}

func (KeyValuePairs) Type() model.LayoutType { return model.LayoutKeyValuePairs }

func (KeyValuePairs) Render(ctx context.Context, in Input) (model.Grid, error) {
	if err := ctx.Err(); err != nil {
		return model.Grid{}, err
	}
	f := in.formatter()
	perRow := in.Config.Layout.EffectiveColumnsPerRow()
	grid := newGrid(model.LayoutKeyValuePairs, in.Config)

	for _, rec := range nonEmpty(in.Rows) {
		var pairs [][2]model.GridCell
		for _, col := range in.Columns {
			value, _ := rec.Get(col.Key)
			label := col.DisplayLabel()
			if cell, ok := value.(model.Cell); ok && cell.Label != "" {
				label = cell.Label
				cell.Label = ""
				value = cell
			}
			valueCell := f.Cell(col, value)
			valueCell.Colspan, valueCell.Rowspan = 0, 0
			pairs = append(pairs, [2]model.GridCell{
				{Text: label, Header: true, Key: col.Key, Class: in.Config.Styling.HeaderClass},
				valueCell,
			})
		}
		if len(pairs) == 0 {
			continue
		}

		section := model.GridSection{Class: "tablegen-record"}
		for start := 0; start < len(pairs); start += perRow {
			end := min(start+perRow, len(pairs))
			row := model.GridRow{Kind: model.RowKindPair, Class: in.Config.Styling.RowClass}
			for _, pair := range pairs[start:end] {
				row.Cells = append(row.Cells, pair[0], pair[1])
			}
			if missing := perRow - (end - start); missing > 0 {
				last := len(row.Cells) - 1
				row.Cells[last].Colspan = 1 + 2*missing
			}
			section.Rows = append(section.Rows, row)
		}
		grid.Sections = append(grid.Sections, section)
	}
	return grid, nil
}
