package layout

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-tablegen/pkg/format"
	"github.com/goliatone/go-tablegen/pkg/model"
)

// GroupedRows partitions rows by the group_by keys in first-seen order. Each
// top-level group becomes a section. With multi_level_grouping every key adds
// a nesting level; with hierarchical_headers each level gets its own header
// row, otherwise one combined header row introduces the innermost group.
type GroupedRows struct{}

func (GroupedRows) Type() model.LayoutType { return model.LayoutGroupedRows }

type group struct {
	label string
	rows  []model.Record
}

type groupRun struct {
	in     Input
	f      *format.Formatter
	keys   []string
	body   []model.Column
	grid   *model.Grid
	parent *model.GridSection
}

func (GroupedRows) Render(ctx context.Context, in Input) (model.Grid, error) {
	if err := ctx.Err(); err != nil {
		return model.Grid{}, err
	}
	keys := groupKeys(in.Config.Layout)
	run := &groupRun{
		in:   in,
		f:    in.formatter(),
		keys: keys,
		body: without(in.Columns, keys...),
	}
	grid := newGrid(model.LayoutGroupedRows, in.Config)
	run.grid = &grid
	if in.Config.Layout.ShowHeaders {
		grid.Headers = [][]model.GridCell{headerRow(run.body, in.Config)}
	}

	rows := nonEmpty(in.Rows)
	if len(keys) == 0 {
		section := model.GridSection{}
		for _, rec := range rows {
			section.Rows = append(section.Rows, dataRow(in.Config, dataCells(run.f, run.body, rec)))
		}
		if len(section.Rows) > 0 {
			grid.Sections = append(grid.Sections, section)
		}
		return grid, nil
	}

	run.emit(rows, 0, nil)
	return grid, nil
}

func groupKeys(layout model.LayoutSpec) []string {
	var keys []string
	for _, key := range layout.GroupBy {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	if !layout.MultiLevelGrouping && len(keys) > 1 {
		keys = keys[:1]
	}
	return keys
}

func (r *groupRun) emit(rows []model.Record, level int, trail []string) {
	col := columnFor(r.in.Columns, r.keys[level])
	hierarchical := r.in.Config.Layout.HierarchicalHeaders
	last := level == len(r.keys)-1

	for _, grp := range partition(r.f, col, rows) {
		if level == 0 {
			r.grid.Sections = append(r.grid.Sections, model.GridSection{
				Title: grp.label,
				Class: "tablegen-group",
			})
			r.parent = &r.grid.Sections[len(r.grid.Sections)-1]
		}
		path := append(append([]string{}, trail...), grp.label)

		if hierarchical {
			r.groupRow(level, fmt.Sprintf("%s: %s", col.DisplayLabel(), grp.label), len(grp.rows))
		}
		if !last {
			r.emit(grp.rows, level+1, path)
			continue
		}
		if !hierarchical {
			r.groupRow(0, strings.Join(path, " / "), len(grp.rows))
		}
		for _, rec := range grp.rows {
			row := dataRow(r.in.Config, dataCells(r.f, r.body, rec))
			row.Level = level
			r.parent.Rows = append(r.parent.Rows, row)
		}
	}
}

func (r *groupRun) groupRow(level int, text string, count int) {
	span := max(len(r.body), 1)
	r.parent.Rows = append(r.parent.Rows, model.GridRow{
		Kind:  model.RowKindGroup,
		Level: level,
		Class: fmt.Sprintf("tablegen-group-row tablegen-group-level-%d", level),
		Cells: []model.GridCell{{
			Text:    fmt.Sprintf("%s (%d)", text, count),
			Header:  true,
			Colspan: span,
			Level:   level,
			Class:   "tablegen-group-header",
		}},
	})
}

// partition splits rows by the formatted value of col, preserving the order
// in which each value is first seen.
func partition(f *format.Formatter, col model.Column, rows []model.Record) []group {
	var groups []group
	index := map[string]int{}
	for _, rec := range rows {
		value, _ := rec.Get(col.Key)
		label := f.Text(col, value)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, group{label: label})
		}
		groups[i].rows = append(groups[i].rows, rec)
	}
	return groups
}
