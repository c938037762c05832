package model

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Cell is a dataset value that carries presentation directives alongside the
// raw value. A Cell with neither Label nor Value is unset.
type Cell struct {
	Label          string         `json:"label,omitempty"`
	Value          any            `json:"value,omitempty"`
	FormattedValue string         `json:"formatted_value,omitempty"`
	Type           ColumnType     `json:"type,omitempty"`
	Colspan        int            `json:"colspan,omitempty"`
	Rowspan        int            `json:"rowspan,omitempty"`
	Options        map[string]any `json:"options,omitempty"`
	Class          string         `json:"class,omitempty"`
}

// Unset reports whether the cell has nothing to display.
func (c Cell) Unset() bool {
	return strings.TrimSpace(c.Label) == "" && IsEmptyValue(c.Value) && c.FormattedValue == ""
}

// CellOf wraps any dataset value in a Cell. Cell values pass through and
// pointers to cells are dereferenced.
func CellOf(value any) Cell {
	switch v := value.(type) {
	case Cell:
		return v
	case *Cell:
		if v == nil {
			return Cell{}
		}
		return *v
	default:
		return Cell{Value: value}
	}
}

// IsEmptyValue reports whether a raw value should render as the unset
// placeholder: nil, blank strings, empty collections and unset cells.
func IsEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case json.Number:
		return v.String() == ""
	case Cell:
		return v.Unset()
	case *Cell:
		return v == nil || v.Unset()
	case Record:
		return len(v.Entries) == 0
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// Stringify converts any value to text without type-specific formatting. It
// never panics: fmt recovers from panicking Stringer implementations.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case Cell:
		if v.FormattedValue != "" {
			return v.FormattedValue
		}
		if IsEmptyValue(v.Value) {
			return v.Label
		}
		return Stringify(v.Value)
	case Record:
		parts := make([]string, 0, len(v.Entries))
		for _, entry := range v.Entries {
			parts = append(parts, entry.Key+": "+Stringify(entry.Value))
		}
		return strings.Join(parts, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return 0
			}
			return int(f)
		}
		return int(n)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}
