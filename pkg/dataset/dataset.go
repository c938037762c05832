// Package dataset reads table data files: a JSON or YAML list of objects
// decoded into ordered records.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// Format names a data file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the format from a file extension or media type. Anything
// unrecognised is JSON.
func FormatFor(hint string) Format {
	hint = strings.ToLower(strings.TrimSpace(hint))
	switch {
	case hint == ".yaml", hint == ".yml", hint == "yaml", hint == "yml",
		strings.Contains(hint, "yaml"):
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads the data file at path.
func Load(path string) ([]model.Record, error) {
	if path == "" {
		return nil, errors.New("dataset: path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	return Decode(FormatFor(filepath.Ext(path)), data)
}

// Read decodes every byte from r.
func Read(r io.Reader, format Format) ([]model.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("dataset: read: %w", err)
	}
	return Decode(format, data)
}

// Decode parses data as a list of objects. Empty input is an empty dataset.
func Decode(format Format, data []byte) ([]model.Record, error) {
	rows := []model.Record{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return rows, nil
	}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("dataset: decode yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("dataset: decode json: %w", err)
		}
	}
	return rows, nil
}
