package resolver

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// ParseOverrides decodes a JSON or YAML document into Overrides. A document
// that is not an object at all is returned as an error; everything else is
// reported as issues so the render can proceed.
func ParseOverrides(data []byte) (Overrides, []model.FieldError, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Overrides{}, nil, nil
	}
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, nil, fmt.Errorf("resolver: parse overrides: %w", err)
	}
	if raw == nil {
		return Overrides{}, nil, nil
	}
	doc, ok := normalise(raw).(map[string]any)
	if !ok {
		return Overrides{}, nil, fmt.Errorf("resolver: parse overrides: document must be an object, got %T", raw)
	}
	ov, issues := DecodeOverrides(doc)
	return ov, issues, nil
}

// DecodeOverrides converts an arbitrary caller config into typed Overrides.
// Malformed entries are skipped and reported; the rest still applies.
func DecodeOverrides(raw map[string]any) (Overrides, []model.FieldError) {
	d := &decoder{}
	var ov Overrides
	if raw == nil {
		return ov, nil
	}

	if value, present := raw["columns"]; present {
		cols := d.columns("columns", value)
		ov.Columns = &cols
	}
	if value, present := raw["layout"]; present {
		if value == nil {
			d.add("layout", model.IssueMissingLayout, "layout is required")
		} else if obj, ok := d.object("layout", value); ok {
			layout := d.layout(obj)
			ov.Layout = &layout
		}
	}
	if value, present := raw["styling"]; present && value != nil {
		if obj, ok := d.object("styling", value); ok {
			styling := d.styling(obj)
			ov.Styling = &styling
		}
	}
	if value, present := raw["features"]; present && value != nil {
		if obj, ok := d.object("features", value); ok {
			ov.Features = &FeatureOverrides{
				DynamicColumns:     d.boolPtr("features.dynamic_columns", obj, "dynamic_columns"),
				ConditionalColumns: d.boolPtr("features.conditional_columns", obj, "conditional_columns"),
				Performance:        d.boolPtr("features.performance", obj, "performance"),
				Sanitize:           d.boolPtr("features.sanitize", obj, "sanitize"),
			}
		}
	}
	if value, present := raw["global_settings"]; present && value != nil {
		if obj, ok := d.object("global_settings", value); ok {
			ov.Settings = &SettingsOverrides{
				UnsetLabel:     d.stringPtr("global_settings.unset_label", obj, "unset_label"),
				DateFormat:     d.stringPtr("global_settings.date_format", obj, "date_format"),
				DateTimeFormat: d.stringPtr("global_settings.datetime_format", obj, "datetime_format"),
				Locale:         d.stringPtr("global_settings.locale", obj, "locale"),
				Currency:       d.stringPtr("global_settings.currency", obj, "currency"),
				EmptyMessage:   d.stringPtr("global_settings.empty_message", obj, "empty_message"),
				Caption:        d.stringPtr("global_settings.caption", obj, "caption"),
			}
		}
	}
	return ov, d.issues
}

type decoder struct {
	issues []model.FieldError
}

func (d *decoder) add(field, code, format string, args ...any) {
	d.issues = append(d.issues, model.FieldError{
		Field:   field,
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

func (d *decoder) object(field string, value any) (map[string]any, bool) {
	obj, ok := value.(map[string]any)
	if !ok {
		d.add(field, model.IssueInvalidType, "expected an object, got %s", kindOf(value))
	}
	return obj, ok
}

func (d *decoder) columns(field string, value any) []model.Column {
	if value == nil {
		return nil
	}
	items, ok := value.([]any)
	if !ok {
		d.add(field, model.IssueInvalidType, "expected a list, got %s", kindOf(value))
		return []model.Column{}
	}
	out := make([]model.Column, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("%s[%d]", field, i)
		switch typed := item.(type) {
		case string:
			out = append(out, model.Column{Key: typed})
		case map[string]any:
			out = append(out, d.column(path, typed))
		default:
			d.add(path, model.IssueInvalidType, "expected a column object, got %s", kindOf(item))
		}
	}
	return out
}

func (d *decoder) column(path string, obj map[string]any) model.Column {
	col := model.Column{
		Key:       d.str(path+".key", obj, "key"),
		Label:     d.str(path+".label", obj, "label"),
		Type:      model.ColumnType(d.str(path+".type", obj, "type")),
		Condition: d.str(path+".conditional_predicate", obj, "conditional_predicate"),
		Section:   d.str(path+".section", obj, "section"),
		Class:     d.str(path+".class", obj, "class"),
		Format:    d.str(path+".format", obj, "format"),
	}
	if dyn := d.boolPtr(path+".dynamic", obj, "dynamic"); dyn != nil {
		col.Dynamic = *dyn
	}
	if raw, ok := obj["width"]; ok && raw != nil {
		if width, ok := parseWidth(raw); ok {
			col.Width = width
		} else {
			d.add(path+".width", model.IssueInvalidWidth, "width %v is not a number or percentage", raw)
		}
	}
	return col
}

func (d *decoder) layout(obj map[string]any) LayoutOverrides {
	l := LayoutOverrides{
		Type:                 d.stringPtr("layout.type", obj, "type"),
		ColumnsPerRow:        d.intPtr("layout.columns_per_row", obj, "columns_per_row"),
		ShowHeaders:          d.boolPtr("layout.show_headers", obj, "show_headers"),
		GroupBy:              d.stringList("layout.group_by", obj, "group_by"),
		ResponsiveBreakpoint: d.stringPtr("layout.responsive_breakpoint", obj, "responsive_breakpoint"),
		NestedData:           d.boolPtr("layout.nested_data", obj, "nested_data"),
		CellMerging:          d.boolPtr("layout.cell_merging", obj, "cell_merging"),
		HierarchicalHeaders:  d.boolPtr("layout.hierarchical_headers", obj, "hierarchical_headers"),
		MultiLevelGrouping:   d.boolPtr("layout.multi_level_grouping", obj, "multi_level_grouping"),
		ServiceHeaderKey:     d.stringPtr("layout.service_header_key", obj, "service_header_key"),
		ServiceHeaderRowspan: d.boolPtr("layout.service_header_rowspan", obj, "service_header_rowspan"),
		AutoWidth:            d.boolPtr("layout.auto_width", obj, "auto_width"),
	}
	if value, ok := obj["nesting_config"]; ok && value != nil {
		if nested, ok := d.object("layout.nesting_config", value); ok {
			l.Nesting = &NestingOverrides{
				ChildrenKey: d.stringPtr("layout.nesting_config.children_key", nested, "children_key"),
				MaxDepth:    d.intPtr("layout.nesting_config.max_depth", nested, "max_depth"),
				IndentClass: d.stringPtr("layout.nesting_config.indent_class", nested, "indent_class"),
			}
		}
	}
	if value, ok := obj["merging_config"]; ok && value != nil {
		if merging, ok := d.object("layout.merging_config", value); ok {
			l.Merging = &MergingOverrides{
				MergeColumns:         d.stringList("layout.merging_config.merge_columns", merging, "merge_columns"),
				RespectExplicitSpans: d.boolPtr("layout.merging_config.respect_explicit_spans", merging, "respect_explicit_spans"),
			}
		}
	}
	return l
}

func (d *decoder) styling(obj map[string]any) StylingOverrides {
	s := StylingOverrides{
		TableClass:  d.stringPtr("styling.table_class", obj, "table_class"),
		HeaderClass: d.stringPtr("styling.header_class", obj, "header_class"),
		RowClass:    d.stringPtr("styling.row_class", obj, "row_class"),
		Striped:     d.boolPtr("styling.striped", obj, "striped"),
		Bordered:    d.boolPtr("styling.bordered", obj, "bordered"),
		Compact:     d.boolPtr("styling.compact", obj, "compact"),
		Theme:       d.stringPtr("styling.theme", obj, "theme"),
		Variant:     d.stringPtr("styling.variant", obj, "variant"),
	}
	if value, ok := obj["css_vars"]; ok && value != nil {
		if vars, ok := d.object("styling.css_vars", value); ok {
			s.CSSVars = make(map[string]string, len(vars))
			for k, v := range vars {
				if str, ok := scalarString(v); ok {
					s.CSSVars[k] = str
				} else {
					d.add("styling.css_vars."+k, model.IssueInvalidType, "expected a scalar, got %s", kindOf(v))
				}
			}
		}
	}
	return s
}

func (d *decoder) str(field string, obj map[string]any, key string) string {
	if ptr := d.stringPtr(field, obj, key); ptr != nil {
		return *ptr
	}
	return ""
}

func (d *decoder) stringPtr(field string, obj map[string]any, key string) *string {
	value, ok := obj[key]
	if !ok || value == nil {
		return nil
	}
	str, ok := scalarString(value)
	if !ok {
		d.add(field, model.IssueInvalidType, "expected a string, got %s", kindOf(value))
		return nil
	}
	return &str
}

func (d *decoder) stringList(field string, obj map[string]any, key string) []string {
	value, ok := obj[key]
	if !ok || value == nil {
		return nil
	}
	switch typed := value.(type) {
	case string:
		if typed == "" {
			return nil
		}
		return []string{typed}
	case []any:
		out := make([]string, 0, len(typed))
		for i, item := range typed {
			str, ok := scalarString(item)
			if !ok || str == "" {
				d.add(fmt.Sprintf("%s[%d]", field, i), model.IssueInvalidType, "expected a non-empty string")
				continue
			}
			out = append(out, str)
		}
		return out
	default:
		d.add(field, model.IssueInvalidType, "expected a string or list, got %s", kindOf(value))
		return nil
	}
}

func (d *decoder) boolPtr(field string, obj map[string]any, key string) *bool {
	value, ok := obj[key]
	if !ok || value == nil {
		return nil
	}
	switch typed := value.(type) {
	case bool:
		return &typed
	case string:
		if parsed, err := strconv.ParseBool(strings.TrimSpace(typed)); err == nil {
			return &parsed
		}
	case int:
		b := typed != 0
		return &b
	case float64:
		b := typed != 0
		return &b
	}
	d.add(field, model.IssueInvalidType, "expected a boolean, got %s", kindOf(value))
	return nil
}

func (d *decoder) intPtr(field string, obj map[string]any, key string) *int {
	value, ok := obj[key]
	if !ok || value == nil {
		return nil
	}
	if n, ok := toInt(value); ok {
		return &n
	}
	d.add(field, model.IssueInvalidType, "expected an integer, got %s", kindOf(value))
	return nil
}

func toInt(value any) (int, bool) {
	switch typed := value.(type) {
	case int:
		return typed, true
	case int64:
		return int(typed), true
	case uint64:
		return int(typed), true
	case float64:
		if typed != math.Trunc(typed) {
			return 0, false
		}
		return int(typed), true
	case json.Number:
		n, err := typed.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(typed))
		return n, err == nil
	}
	return 0, false
}

// parseWidth accepts plain numbers and percentage strings such as "25%".
func parseWidth(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case float64:
		return typed, true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(typed), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		return f, err == nil
	}
	return 0, false
}

func scalarString(value any) (string, bool) {
	switch typed := value.(type) {
	case string:
		return typed, true
	case bool:
		return strconv.FormatBool(typed), true
	case int:
		return strconv.Itoa(typed), true
	case int64:
		return strconv.FormatInt(typed, 10), true
	case uint64:
		return strconv.FormatUint(typed, 10), true
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64), true
	case json.Number:
		return typed.String(), true
	}
	return "", false
}

func kindOf(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "list"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64, json.Number:
		return "number"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// normalise converts yaml.v3 output into the map[string]any/[]any shape the
// decoder expects. Non-string keys are stringified.
func normalise(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for k, v := range typed {
			typed[k] = normalise(v)
		}
		return typed
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, v := range typed {
			out[fmt.Sprint(k)] = normalise(v)
		}
		return out
	case []any:
		for i, v := range typed {
			typed[i] = normalise(v)
		}
		return typed
	default:
		return value
	}
}
