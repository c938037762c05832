package model

import "strings"

// LayoutType enumerates the closed set of layout algorithms.
type LayoutType string

const (
	LayoutKeyValuePairs LayoutType = "key_value_pairs"
	LayoutGroupedRows   LayoutType = "grouped_rows"
	LayoutServiceTable  LayoutType = "service_table"
	LayoutStandardTable LayoutType = "standard_table"
	LayoutNestedTable   LayoutType = "nested_table"
)

// DefaultLayoutType is used whenever a configuration names no layout or an
// unknown one.
const DefaultLayoutType = LayoutKeyValuePairs

// LayoutTypes returns the closed set in a stable order.
func LayoutTypes() []LayoutType {
	return []LayoutType{
		LayoutKeyValuePairs,
		LayoutGroupedRows,
		LayoutServiceTable,
		LayoutStandardTable,
		LayoutNestedTable,
	}
}

// Valid reports whether t is one of the five known layouts.
func (t LayoutType) Valid() bool {
	switch t {
	case LayoutKeyValuePairs, LayoutGroupedRows, LayoutServiceTable, LayoutStandardTable, LayoutNestedTable:
		return true
	default:
		return false
	}
}

func (t LayoutType) String() string {
	return string(t)
}

// ParseLayoutType normalises raw and returns the matching layout. Unknown or
// empty values resolve to DefaultLayoutType with ok=false so callers can
// surface a coercion warning.
func ParseLayoutType(raw string) (LayoutType, bool) {
	normalised := strings.ToLower(strings.TrimSpace(raw))
	normalised = strings.ReplaceAll(normalised, "-", "_")
	candidate := LayoutType(normalised)
	if candidate.Valid() {
		return candidate, true
	}
	return DefaultLayoutType, false
}

// NestingConfig drives nested_table recursion.
type NestingConfig struct {
	// ChildrenKey names the record entry holding child records.
	ChildrenKey string `json:"children_key,omitempty" yaml:"children_key,omitempty"`
	// MaxDepth bounds recursion; zero means DefaultNestingDepth.
	MaxDepth int `json:"max_depth,omitempty" yaml:"max_depth,omitempty"`
	// IndentClass is applied to the first cell of nested rows with a level suffix.
	IndentClass string `json:"indent_class,omitempty" yaml:"indent_class,omitempty"`
}

// DefaultNestingDepth caps nested_table recursion when MaxDepth is unset.
const DefaultNestingDepth = 8

// MergingConfig drives automatic cell merging.
type MergingConfig struct {
	// MergeColumns lists column keys whose identical consecutive values are
	// merged into a single rowspan cell.
	MergeColumns []string `json:"merge_columns,omitempty" yaml:"merge_columns,omitempty"`
	// RespectExplicitSpans keeps Cell.Colspan/Rowspan from the data.
	RespectExplicitSpans bool `json:"respect_explicit_spans,omitempty" yaml:"respect_explicit_spans,omitempty"`
}

// LayoutSpec describes how rows are arranged.
type LayoutSpec struct {
	Type                 LayoutType    `json:"type" yaml:"type"`
	ColumnsPerRow        int           `json:"columns_per_row,omitempty" yaml:"columns_per_row,omitempty"`
	ShowHeaders          bool          `json:"show_headers" yaml:"show_headers"`
	GroupBy              []string      `json:"group_by,omitempty" yaml:"group_by,omitempty"`
	ResponsiveBreakpoint string        `json:"responsive_breakpoint,omitempty" yaml:"responsive_breakpoint,omitempty"`
	NestedData           bool          `json:"nested_data,omitempty" yaml:"nested_data,omitempty"`
	CellMerging          bool          `json:"cell_merging,omitempty" yaml:"cell_merging,omitempty"`
	HierarchicalHeaders  bool          `json:"hierarchical_headers,omitempty" yaml:"hierarchical_headers,omitempty"`
	MultiLevelGrouping   bool          `json:"multi_level_grouping,omitempty" yaml:"multi_level_grouping,omitempty"`
	ServiceHeaderKey     string        `json:"service_header_key,omitempty" yaml:"service_header_key,omitempty"`
	ServiceHeaderRowspan bool          `json:"service_header_rowspan,omitempty" yaml:"service_header_rowspan,omitempty"`
	AutoWidth            bool          `json:"auto_width,omitempty" yaml:"auto_width,omitempty"`
	Nesting              NestingConfig `json:"nesting_config,omitempty" yaml:"nesting_config,omitempty"`
	Merging              MergingConfig `json:"merging_config,omitempty" yaml:"merging_config,omitempty"`
}

// EffectiveColumnsPerRow clamps ColumnsPerRow to at least one.
func (l LayoutSpec) EffectiveColumnsPerRow() int {
	if l.ColumnsPerRow < 1 {
		return 1
	}
	return l.ColumnsPerRow
}
