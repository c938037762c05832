package layout

import (
	"context"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// StandardTable renders a plain header and body. Configurations asking for
// nested data or cell merging are delegated to the nested_table renderer
// registered alongside it.
type StandardTable struct {
	registry *Registry
}

func (StandardTable) Type() model.LayoutType { return model.LayoutStandardTable }

func (s StandardTable) Render(ctx context.Context, in Input) (model.Grid, error) {
	if in.Config.Layout.NestedData || in.Config.Layout.CellMerging {
		nested := Renderer(NestedTable{})
		if s.registry != nil {
			nested = s.registry.For(model.LayoutNestedTable)
		}
		grid, err := nested.Render(ctx, in)
		if err != nil {
			return model.Grid{}, err
		}
		grid.Layout = model.LayoutStandardTable
		if grid.Meta == nil {
			grid.Meta = map[string]string{}
		}
		grid.Meta["delegated_to"] = string(model.LayoutNestedTable)
		return grid, nil
	}

	if err := ctx.Err(); err != nil {
		return model.Grid{}, err
	}
	f := in.formatter()
	grid := newGrid(model.LayoutStandardTable, in.Config)
	if in.Config.Layout.ShowHeaders {
		grid.Headers = [][]model.GridCell{headerRow(in.Columns, in.Config)}
	}
	section := model.GridSection{}
	for _, rec := range nonEmpty(in.Rows) {
		section.Rows = append(section.Rows, dataRow(in.Config, dataCells(f, in.Columns, rec)))
	}
	if len(section.Rows) > 0 {
		grid.Sections = append(grid.Sections, section)
	}
	return grid, nil
}
