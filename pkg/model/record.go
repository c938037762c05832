package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one key/value pair inside a Record.
type Entry struct {
	Key   string
	Value any
}

// Record is an ordered set of key/value entries; one Record is one dataset row.
// Values are raw scalars, nested Records/slices, or Cell values carrying their
// own type hint and span directives. JSON and YAML decoding preserve key order
// so dynamically discovered columns follow the source document.
type Record struct {
	Entries []Entry
}

// RecordOf builds a record from alternating key/value arguments. Non-string
// keys are formatted with fmt.Sprint; a trailing key without value is kept with
// a nil value.
func RecordOf(keyvals ...any) Record {
	var rec Record
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		var value any
		if i+1 < len(keyvals) {
			value = keyvals[i+1]
		}
		rec.Set(key, value)
	}
	return rec
}

// RecordFromMap converts a map into a record with keys sorted alphabetically,
// the only deterministic order a Go map can offer.
func RecordFromMap(values map[string]any) Record {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rec := Record{Entries: make([]Entry, 0, len(keys))}
	for _, key := range keys {
		rec.Entries = append(rec.Entries, Entry{Key: key, Value: normaliseValue(values[key])})
	}
	return rec
}

// Len returns the number of entries.
func (r Record) Len() int {
	return len(r.Entries)
}

// Get returns the value stored under key.
func (r Record) Get(key string) (any, bool) {
	for _, entry := range r.Entries {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return nil, false
}

// Keys returns entry keys in order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.Entries))
	for _, entry := range r.Entries {
		keys = append(keys, entry.Key)
	}
	return keys
}

// Set replaces an existing entry or appends a new one.
func (r *Record) Set(key string, value any) {
	for i := range r.Entries {
		if r.Entries[i].Key == key {
			r.Entries[i].Value = value
			return
		}
	}
	r.Entries = append(r.Entries, Entry{Key: key, Value: value})
}

// Map flattens the record into a map. Nested records are converted as well so
// predicate evaluation can walk dot paths.
func (r Record) Map() map[string]any {
	out := make(map[string]any, len(r.Entries))
	for _, entry := range r.Entries {
		switch v := entry.Value.(type) {
		case Record:
			out[entry.Key] = v.Map()
		case Cell:
			out[entry.Key] = v.Value
		default:
			out[entry.Key] = v
		}
	}
	return out
}

// MarshalJSON writes the record as a JSON object in entry order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(entry.Value)
		if err != nil {
			return nil, fmt.Errorf("model: marshal %q: %w", entry.Key, err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (r *Record) UnmarshalJSON(data []byte) error {
	value, err := decodeJSON(data)
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case Record:
		*r = v
	case Cell:
		*r = cellAsRecord(v)
	default:
		return fmt.Errorf("model: record must be a JSON object, got %T", value)
	}
	return nil
}

// UnmarshalYAML decodes a YAML mapping preserving key order.
func (r *Record) UnmarshalYAML(node *yaml.Node) error {
	value, err := decodeYAML(node)
	if err != nil {
		return err
	}
	switch v := value.(type) {
	case Record:
		*r = v
	case Cell:
		*r = cellAsRecord(v)
	default:
		return fmt.Errorf("model: record must be a YAML mapping (line %d)", node.Line)
	}
	return nil
}

// AsRecords interprets a value as a list of child records. It accepts
// []Record, []map[string]any and []any whose elements are records or maps.
func AsRecords(value any) ([]Record, bool) {
	switch v := value.(type) {
	case []Record:
		return v, true
	case []map[string]any:
		out := make([]Record, 0, len(v))
		for _, m := range v {
			out = append(out, RecordFromMap(m))
		}
		return out, true
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			switch typed := item.(type) {
			case Record:
				out = append(out, typed)
			case map[string]any:
				out = append(out, RecordFromMap(typed))
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func cellAsRecord(c Cell) Record {
	rec := Record{}
	if c.Label != "" {
		rec.Set("label", c.Label)
	}
	rec.Set("value", c.Value)
	return rec
}

func normaliseValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if cell, ok := cellFromMap(v); ok {
			return cell
		}
		return RecordFromMap(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normaliseValue(item)
		}
		return out
	default:
		return value
	}
}

func decodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	value, err := decodeJSONToken(dec)
	if err != nil {
		return nil, fmt.Errorf("model: decode json: %w", err)
	}
	return value, nil
}

func decodeJSONToken(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch delim {
	case '{':
		rec := Record{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			value, err := decodeJSONToken(dec)
			if err != nil {
				return nil, err
			}
			rec.Entries = append(rec.Entries, Entry{Key: key, Value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		if cell, ok := cellFromRecord(rec); ok {
			return cell, nil
		}
		return rec, nil
	case '[':
		list := []any{}
		for dec.More() {
			value, err := decodeJSONToken(dec)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

func decodeYAML(node *yaml.Node) (any, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return decodeYAML(node.Content[0])
	case yaml.AliasNode:
		return decodeYAML(node.Alias)
	case yaml.MappingNode:
		rec := Record{}
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			value, err := decodeYAML(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			rec.Entries = append(rec.Entries, Entry{Key: key, Value: value})
		}
		if cell, ok := cellFromRecord(rec); ok {
			return cell, nil
		}
		return rec, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			value, err := decodeYAML(child)
			if err != nil {
				return nil, err
			}
			list = append(list, value)
		}
		return list, nil
	default:
		var value any
		if err := node.Decode(&value); err != nil {
			return nil, fmt.Errorf("model: decode yaml scalar (line %d): %w", node.Line, err)
		}
		return value, nil
	}
}

// cellKeys lists the keys that make an object a Cell rather than nested data.
var cellKeys = map[string]struct{}{
	"label":           {},
	"value":           {},
	"type":            {},
	"colspan":         {},
	"rowspan":         {},
	"options":         {},
	"class":           {},
	"formatted_value": {},
}

func cellFromRecord(rec Record) (Cell, bool) {
	if len(rec.Entries) == 0 {
		return Cell{}, false
	}
	_, hasValue := rec.Get("value")
	_, hasLabel := rec.Get("label")
	if !hasValue && !hasLabel {
		return Cell{}, false
	}
	for _, entry := range rec.Entries {
		if _, ok := cellKeys[entry.Key]; !ok {
			return Cell{}, false
		}
	}
	var cell Cell
	for _, entry := range rec.Entries {
		switch entry.Key {
		case "label":
			cell.Label = strings.TrimSpace(fmt.Sprint(entry.Value))
		case "value":
			cell.Value = entry.Value
		case "formatted_value":
			cell.FormattedValue = fmt.Sprint(entry.Value)
		case "type":
			cell.Type = ColumnType(fmt.Sprint(entry.Value))
		case "colspan":
			cell.Colspan = toInt(entry.Value)
		case "rowspan":
			cell.Rowspan = toInt(entry.Value)
		case "class":
			cell.Class = fmt.Sprint(entry.Value)
		case "options":
			if opts, ok := entry.Value.(Record); ok {
				cell.Options = opts.Map()
			}
		}
	}
	return cell, true
}

func cellFromMap(m map[string]any) (Cell, bool) {
	return cellFromRecord(RecordFromMapShallow(m))
}

// RecordFromMapShallow converts a map without normalising nested values.
func RecordFromMapShallow(values map[string]any) Record {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	rec := Record{Entries: make([]Entry, 0, len(keys))}
	for _, key := range keys {
		rec.Entries = append(rec.Entries, Entry{Key: key, Value: values[key]})
	}
	return rec
}
