package model

// ColumnType identifies how a column's values are formatted.
type ColumnType string

const (
	ColumnTypeText        ColumnType = "text"
	ColumnTypeNumber      ColumnType = "number"
	ColumnTypeCurrency    ColumnType = "currency"
	ColumnTypeDate        ColumnType = "date"
	ColumnTypeDateTime    ColumnType = "datetime"
	ColumnTypeBoolean     ColumnType = "boolean"
	ColumnTypeEmail       ColumnType = "email"
	ColumnTypeURL         ColumnType = "url"
	ColumnTypeBadge       ColumnType = "badge"
	ColumnTypeFileDisplay ColumnType = "file_display"
	ColumnTypeHTML        ColumnType = "html"
)

// Column describes one column (or one label/value pair in detail layouts).
// Key must be unique once the column list has been computed.
type Column struct {
	Key       string     `json:"key" yaml:"key"`
	Label     string     `json:"label,omitempty" yaml:"label,omitempty"`
	Type      ColumnType `json:"type,omitempty" yaml:"type,omitempty"`
	Width     float64    `json:"width,omitempty" yaml:"width,omitempty"`
	Condition string     `json:"conditional_predicate,omitempty" yaml:"conditional_predicate,omitempty"`
	Dynamic   bool       `json:"dynamic,omitempty" yaml:"dynamic,omitempty"`
	Section   string     `json:"section,omitempty" yaml:"section,omitempty"`
	Class     string     `json:"class,omitempty" yaml:"class,omitempty"`
	Format    string     `json:"format,omitempty" yaml:"format,omitempty"`
}

// EffectiveType defaults an empty type to text.
func (c Column) EffectiveType() ColumnType {
	if c.Type == "" {
		return ColumnTypeText
	}
	return c.Type
}

// DisplayLabel returns the label or, when empty, the key.
func (c Column) DisplayLabel() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// StylingSpec carries presentation classes and theme selection.
type StylingSpec struct {
	TableClass  string            `json:"table_class,omitempty" yaml:"table_class,omitempty"`
	HeaderClass string            `json:"header_class,omitempty" yaml:"header_class,omitempty"`
	RowClass    string            `json:"row_class,omitempty" yaml:"row_class,omitempty"`
	Striped     bool              `json:"striped,omitempty" yaml:"striped,omitempty"`
	Bordered    bool              `json:"bordered,omitempty" yaml:"bordered,omitempty"`
	Compact     bool              `json:"compact,omitempty" yaml:"compact,omitempty"`
	Theme       string            `json:"theme,omitempty" yaml:"theme,omitempty"`
	Variant     string            `json:"variant,omitempty" yaml:"variant,omitempty"`
	CSSVars     map[string]string `json:"css_vars,omitempty" yaml:"css_vars,omitempty"`
}

// FeatureFlags toggles optional pipeline stages.
type FeatureFlags struct {
	DynamicColumns     bool `json:"dynamic_columns" yaml:"dynamic_columns"`
	ConditionalColumns bool `json:"conditional_columns" yaml:"conditional_columns"`
	Performance        bool `json:"performance" yaml:"performance"`
	Sanitize           bool `json:"sanitize" yaml:"sanitize"`
}

// GlobalSettings holds render-wide presentation settings.
type GlobalSettings struct {
	UnsetLabel     string `json:"unset_label,omitempty" yaml:"unset_label,omitempty"`
	DateFormat     string `json:"date_format,omitempty" yaml:"date_format,omitempty"`
	DateTimeFormat string `json:"datetime_format,omitempty" yaml:"datetime_format,omitempty"`
	Locale         string `json:"locale,omitempty" yaml:"locale,omitempty"`
	Currency       string `json:"currency,omitempty" yaml:"currency,omitempty"`
	EmptyMessage   string `json:"empty_message,omitempty" yaml:"empty_message,omitempty"`
	Caption        string `json:"caption,omitempty" yaml:"caption,omitempty"`
}

const (
	DefaultUnsetLabel     = "Not set"
	DefaultDateFormat     = "2006-01-02"
	DefaultDateTimeFormat = "2006-01-02 15:04"
	DefaultEmptyMessage   = "No records"
)

// TableConfig is the full configuration for one render. A resolved
// TableConfig always carries a valid Layout.Type.
type TableConfig struct {
	Columns  []Column       `json:"columns" yaml:"columns"`
	Layout   LayoutSpec     `json:"layout" yaml:"layout"`
	Styling  StylingSpec    `json:"styling,omitempty" yaml:"styling,omitempty"`
	Features FeatureFlags   `json:"features" yaml:"features"`
	Settings GlobalSettings `json:"global_settings,omitempty" yaml:"global_settings,omitempty"`
}

// Clone returns a deep copy so registries and caches can hand out configs
// without sharing slices or maps.
func (c TableConfig) Clone() TableConfig {
	out := c
	if c.Columns != nil {
		out.Columns = append([]Column{}, c.Columns...)
	}
	out.Layout.GroupBy = cloneStrings(c.Layout.GroupBy)
	out.Layout.Merging.MergeColumns = cloneStrings(c.Layout.Merging.MergeColumns)
	if c.Styling.CSSVars != nil {
		out.Styling.CSSVars = make(map[string]string, len(c.Styling.CSSVars))
		for k, v := range c.Styling.CSSVars {
			out.Styling.CSSVars[k] = v
		}
	}
	return out
}

// UnsetLabel returns the configured placeholder for missing values.
func (c TableConfig) UnsetLabel() string {
	if c.Settings.UnsetLabel != "" {
		return c.Settings.UnsetLabel
	}
	return DefaultUnsetLabel
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

// DefaultFeatureFlags enables every optional stage.
func DefaultFeatureFlags() FeatureFlags {
	return FeatureFlags{
		DynamicColumns:     true,
		ConditionalColumns: true,
		Performance:        true,
		Sanitize:           true,
	}
}
