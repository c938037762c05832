package resolver

import "github.com/goliatone/go-tablegen/pkg/model"

// Overrides is the caller-supplied partial configuration merged over a
// table-type default. Nil pointers mean "not supplied".
//
// Merge policy per field:
//   - scalars (pointer fields) overwrite the default when set
//   - nested objects (Layout, Styling, Features, Settings, Nesting, Merging)
//     merge key-wise
//   - lists (Columns, GroupBy, MergeColumns) replace the default wholesale when
//     the caller supplies at least one entry; an empty list keeps the default
//   - Columns pointing at a nil slice is an explicit "columns: null" and
//     clears the list
//   - CSSVars merge key-wise
type Overrides struct {
	Columns  *[]model.Column    `json:"columns,omitempty"`
	Layout   *LayoutOverrides   `json:"layout,omitempty"`
	Styling  *StylingOverrides  `json:"styling,omitempty"`
	Features *FeatureOverrides  `json:"features,omitempty"`
	Settings *SettingsOverrides `json:"global_settings,omitempty"`
}

// LayoutOverrides mirrors model.LayoutSpec with optional fields. Type stays a
// raw string so unknown values reach validation.
type LayoutOverrides struct {
	Type                 *string            `json:"type,omitempty"`
	ColumnsPerRow        *int               `json:"columns_per_row,omitempty"`
	ShowHeaders          *bool              `json:"show_headers,omitempty"`
	GroupBy              []string           `json:"group_by,omitempty"`
	ResponsiveBreakpoint *string            `json:"responsive_breakpoint,omitempty"`
	NestedData           *bool              `json:"nested_data,omitempty"`
	CellMerging          *bool              `json:"cell_merging,omitempty"`
	HierarchicalHeaders  *bool              `json:"hierarchical_headers,omitempty"`
	MultiLevelGrouping   *bool              `json:"multi_level_grouping,omitempty"`
	ServiceHeaderKey     *string            `json:"service_header_key,omitempty"`
	ServiceHeaderRowspan *bool              `json:"service_header_rowspan,omitempty"`
	AutoWidth            *bool              `json:"auto_width,omitempty"`
	Nesting              *NestingOverrides  `json:"nesting_config,omitempty"`
	Merging              *MergingOverrides  `json:"merging_config,omitempty"`
}

// NestingOverrides mirrors model.NestingConfig.
type NestingOverrides struct {
	ChildrenKey *string `json:"children_key,omitempty"`
	MaxDepth    *int    `json:"max_depth,omitempty"`
	IndentClass *string `json:"indent_class,omitempty"`
}

// MergingOverrides mirrors model.MergingConfig.
type MergingOverrides struct {
	MergeColumns         []string `json:"merge_columns,omitempty"`
	RespectExplicitSpans *bool    `json:"respect_explicit_spans,omitempty"`
}

// StylingOverrides mirrors model.StylingSpec.
type StylingOverrides struct {
	TableClass  *string           `json:"table_class,omitempty"`
	HeaderClass *string           `json:"header_class,omitempty"`
	RowClass    *string           `json:"row_class,omitempty"`
	Striped     *bool             `json:"striped,omitempty"`
	Bordered    *bool             `json:"bordered,omitempty"`
	Compact     *bool             `json:"compact,omitempty"`
	Theme       *string           `json:"theme,omitempty"`
	Variant     *string           `json:"variant,omitempty"`
	CSSVars     map[string]string `json:"css_vars,omitempty"`
}

// FeatureOverrides mirrors model.FeatureFlags.
type FeatureOverrides struct {
	DynamicColumns     *bool `json:"dynamic_columns,omitempty"`
	ConditionalColumns *bool `json:"conditional_columns,omitempty"`
	Performance        *bool `json:"performance,omitempty"`
	Sanitize           *bool `json:"sanitize,omitempty"`
}

// SettingsOverrides mirrors model.GlobalSettings.
type SettingsOverrides struct {
	UnsetLabel     *string `json:"unset_label,omitempty"`
	DateFormat     *string `json:"date_format,omitempty"`
	DateTimeFormat *string `json:"datetime_format,omitempty"`
	Locale         *string `json:"locale,omitempty"`
	Currency       *string `json:"currency,omitempty"`
	EmptyMessage   *string `json:"empty_message,omitempty"`
	Caption        *string `json:"caption,omitempty"`
}

// Merge applies overrides over base following the Overrides merge policy.
// base is cloned first and never mutated.
func Merge(base model.TableConfig, overrides Overrides) model.TableConfig {
	out := base.Clone()

	if overrides.Columns != nil {
		supplied := *overrides.Columns
		switch {
		case supplied == nil:
			out.Columns = nil
		case len(supplied) > 0:
			out.Columns = append([]model.Column{}, supplied...)
		}
	}
	if overrides.Layout != nil {
		mergeLayout(&out.Layout, *overrides.Layout)
	}
	if overrides.Styling != nil {
		mergeStyling(&out.Styling, *overrides.Styling)
	}
	if overrides.Features != nil {
		f := overrides.Features
		setBool(&out.Features.DynamicColumns, f.DynamicColumns)
		setBool(&out.Features.ConditionalColumns, f.ConditionalColumns)
		setBool(&out.Features.Performance, f.Performance)
		setBool(&out.Features.Sanitize, f.Sanitize)
	}
	if overrides.Settings != nil {
		s := overrides.Settings
		setString(&out.Settings.UnsetLabel, s.UnsetLabel)
		setString(&out.Settings.DateFormat, s.DateFormat)
		setString(&out.Settings.DateTimeFormat, s.DateTimeFormat)
		setString(&out.Settings.Locale, s.Locale)
		setString(&out.Settings.Currency, s.Currency)
		setString(&out.Settings.EmptyMessage, s.EmptyMessage)
		setString(&out.Settings.Caption, s.Caption)
	}
	return out
}

func mergeLayout(dst *model.LayoutSpec, src LayoutOverrides) {
	if src.Type != nil {
		dst.Type = model.LayoutType(*src.Type)
	}
	setInt(&dst.ColumnsPerRow, src.ColumnsPerRow)
	setBool(&dst.ShowHeaders, src.ShowHeaders)
	if len(src.GroupBy) > 0 {
		dst.GroupBy = append([]string{}, src.GroupBy...)
	}
	setString(&dst.ResponsiveBreakpoint, src.ResponsiveBreakpoint)
	setBool(&dst.NestedData, src.NestedData)
	setBool(&dst.CellMerging, src.CellMerging)
	setBool(&dst.HierarchicalHeaders, src.HierarchicalHeaders)
	setBool(&dst.MultiLevelGrouping, src.MultiLevelGrouping)
	setString(&dst.ServiceHeaderKey, src.ServiceHeaderKey)
	setBool(&dst.ServiceHeaderRowspan, src.ServiceHeaderRowspan)
	setBool(&dst.AutoWidth, src.AutoWidth)
	if src.Nesting != nil {
		setString(&dst.Nesting.ChildrenKey, src.Nesting.ChildrenKey)
		setInt(&dst.Nesting.MaxDepth, src.Nesting.MaxDepth)
		setString(&dst.Nesting.IndentClass, src.Nesting.IndentClass)
	}
	if src.Merging != nil {
		if len(src.Merging.MergeColumns) > 0 {
			dst.Merging.MergeColumns = append([]string{}, src.Merging.MergeColumns...)
		}
		setBool(&dst.Merging.RespectExplicitSpans, src.Merging.RespectExplicitSpans)
	}
}

func mergeStyling(dst *model.StylingSpec, src StylingOverrides) {
	setString(&dst.TableClass, src.TableClass)
	setString(&dst.HeaderClass, src.HeaderClass)
	setString(&dst.RowClass, src.RowClass)
	setBool(&dst.Striped, src.Striped)
	setBool(&dst.Bordered, src.Bordered)
	setBool(&dst.Compact, src.Compact)
	setString(&dst.Theme, src.Theme)
	setString(&dst.Variant, src.Variant)
	if len(src.CSSVars) > 0 {
		if dst.CSSVars == nil {
			dst.CSSVars = make(map[string]string, len(src.CSSVars))
		}
		for k, v := range src.CSSVars {
			dst.CSSVars[k] = v
		}
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
