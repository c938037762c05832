package failsafe

import (
	"strconv"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// FallbackClass marks grids produced by FallbackGrid.
const FallbackClass = "tablegen-fallback"

// FallbackGrid builds the generic key → value table straight from the raw
// records. It only uses literal string conversion, so nothing in the data
// can make it fail. Empty values show unsetLabel.
func FallbackGrid(rows []model.Record, unsetLabel string) model.Grid {
	if unsetLabel == "" {
		unsetLabel = model.DefaultUnsetLabel
	}
	grid := model.Grid{
		Headers: [][]model.GridCell{{
			{Text: "Key", Header: true},
			{Text: "Value", Header: true},
		}},
		Meta: map[string]string{"fallback": "true"},
	}
	for i, rec := range rows {
		if rec.Len() == 0 {
			continue
		}
		section := model.GridSection{Class: FallbackClass}
		if len(rows) > 1 {
			section.Title = "#" + strconv.Itoa(i+1)
		}
		for _, entry := range rec.Entries {
			value := model.GridCell{Text: model.Stringify(entry.Value)}
			if model.IsEmptyValue(entry.Value) {
				value = model.GridCell{Text: unsetLabel, Unset: true, Class: "is-unset"}
			}
			section.Rows = append(section.Rows, model.GridRow{
				Kind:  model.RowKindPair,
				Cells: []model.GridCell{{Text: entry.Key, Header: true, Key: entry.Key}, value},
			})
		}
		grid.Sections = append(grid.Sections, section)
	}
	return grid
}
