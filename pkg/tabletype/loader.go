package tabletype

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// LoadFS walks fsys and parses every JSON/YAML preset document. A nil fsys
// yields an empty store.
func LoadFS(fsys fs.FS) (*Store, error) {
	store := &Store{types: make(map[string]TableType)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isPresetFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("tabletype: read %s: %w", path, err)
		}

		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawID, raw := range doc.TableTypes {
			id := strings.TrimSpace(rawID)
			if id == "" {
				return fmt.Errorf("tabletype: file %s defines an empty table type id", path)
			}
			if _, exists := store.types[id]; exists {
				return fmt.Errorf("tabletype: duplicate table type %q (file %s)", id, path)
			}
			tt, err := normalisePreset(raw, id, path)
			if err != nil {
				return err
			}
			store.types[id] = tt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

type documentFile struct {
	TableTypes map[string]presetFile `json:"table_types" yaml:"table_types"`
}

type presetFile struct {
	Description string               `json:"description" yaml:"description"`
	Columns     []model.Column       `json:"columns" yaml:"columns"`
	Layout      *model.LayoutSpec    `json:"layout" yaml:"layout"`
	Styling     model.StylingSpec    `json:"styling" yaml:"styling"`
	Features    featureFile          `json:"features" yaml:"features"`
	Settings    model.GlobalSettings `json:"global_settings" yaml:"global_settings"`
}

type featureFile struct {
	DynamicColumns     *bool `json:"dynamic_columns" yaml:"dynamic_columns"`
	ConditionalColumns *bool `json:"conditional_columns" yaml:"conditional_columns"`
	Performance        *bool `json:"performance" yaml:"performance"`
	Sanitize           *bool `json:"sanitize" yaml:"sanitize"`
}

func (f featureFile) apply(base model.FeatureFlags) model.FeatureFlags {
	if f.DynamicColumns != nil {
		base.DynamicColumns = *f.DynamicColumns
	}
	if f.ConditionalColumns != nil {
		base.ConditionalColumns = *f.ConditionalColumns
	}
	if f.Performance != nil {
		base.Performance = *f.Performance
	}
	if f.Sanitize != nil {
		base.Sanitize = *f.Sanitize
	}
	return base
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("tabletype: file %s is empty", source)
	}

	if strings.EqualFold(filepath.Ext(source), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return documentFile{}, fmt.Errorf("tabletype: parse %s: %w", source, err)
		}
		return doc, nil
	}

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("tabletype: parse %s: %w", source, err)
	}
	return doc, nil
}

func normalisePreset(raw presetFile, id, source string) (TableType, error) {
	if raw.Columns == nil {
		return TableType{}, fmt.Errorf("tabletype: table type %q (file %s) is missing columns", id, source)
	}
	if raw.Layout == nil {
		return TableType{}, fmt.Errorf("tabletype: table type %q (file %s) is missing layout", id, source)
	}
	layoutType, ok := model.ParseLayoutType(string(raw.Layout.Type))
	if !ok {
		return TableType{}, fmt.Errorf("tabletype: table type %q (file %s) has unknown layout type %q", id, source, raw.Layout.Type)
	}

	seen := make(map[string]struct{}, len(raw.Columns))
	for idx, column := range raw.Columns {
		key := strings.TrimSpace(column.Key)
		if key == "" {
			return TableType{}, fmt.Errorf("tabletype: table type %q (file %s) column %d has an empty key", id, source, idx)
		}
		if _, dup := seen[key]; dup {
			return TableType{}, fmt.Errorf("tabletype: table type %q (file %s) defines duplicate column %q", id, source, key)
		}
		seen[key] = struct{}{}
		raw.Columns[idx].Key = key
	}

	layout := *raw.Layout
	layout.Type = layoutType

	return TableType{
		ID:          id,
		Description: strings.TrimSpace(raw.Description),
		Source:      source,
		Config: model.TableConfig{
			Columns:  raw.Columns,
			Layout:   layout,
			Styling:  raw.Styling,
			Features: raw.Features.apply(model.DefaultFeatureFlags()),
			Settings: raw.Settings,
		},
	}, nil
}

func isPresetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
