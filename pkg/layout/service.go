package layout

import (
	"context"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// ServiceTable groups rows under category headers. With
// service_header_rowspan the category is a leading header cell spanning all
// of its data rows; otherwise each category opens with a full-width header
// row.
type ServiceTable struct{}

func (ServiceTable) Type() model.LayoutType { return model.LayoutServiceTable }

// DefaultServiceHeaderKey is used when neither service_header_key nor
// group_by names the category column.
const DefaultServiceHeaderKey = "category"

func serviceKey(layout model.LayoutSpec) string {
	if layout.ServiceHeaderKey != "" {
		return layout.ServiceHeaderKey
	}
	if keys := groupKeys(layout); len(keys) > 0 {
		return keys[0]
	}
	return DefaultServiceHeaderKey
}

func (ServiceTable) Render(ctx context.Context, in Input) (model.Grid, error) {
	if err := ctx.Err(); err != nil {
		return model.Grid{}, err
	}
	f := in.formatter()
	cfg := in.Config
	key := serviceKey(cfg.Layout)
	category := columnFor(in.Columns, key)
	body := without(in.Columns, key)
	rowspan := cfg.Layout.ServiceHeaderRowspan

	grid := newGrid(model.LayoutServiceTable, cfg)
	if cfg.Layout.ShowHeaders {
		header := headerRow(body, cfg)
		if rowspan {
			header = append(headerRow([]model.Column{category}, cfg), header...)
		}
		grid.Headers = [][]model.GridCell{header}
	}

	for _, grp := range partition(f, category, nonEmpty(in.Rows)) {
		section := model.GridSection{Title: grp.label, Class: "tablegen-service"}
		if !rowspan {
			section.Rows = append(section.Rows, model.GridRow{
				Kind: model.RowKindCategory,
				Cells: []model.GridCell{{
					Text:    grp.label,
					Header:  true,
					Colspan: max(len(body), 1),
					Key:     key,
					Class:   "tablegen-service-header",
				}},
			})
		}
		for i, rec := range grp.rows {
			cells := dataCells(f, body, rec)
			if rowspan && i == 0 {
				head := model.GridCell{
					Text:   grp.label,
					Header: true,
					Key:    key,
					Class:  "tablegen-service-header",
				}
				if len(grp.rows) > 1 {
					head.Rowspan = len(grp.rows)
				}
				cells = append([]model.GridCell{head}, cells...)
			}
			section.Rows = append(section.Rows, dataRow(cfg, cells))
		}
		grid.Sections = append(grid.Sections, section)
	}
	return grid, nil
}
