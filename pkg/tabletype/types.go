package tabletype

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// Store keeps the parsed table-type presets. It is immutable after LoadFS
// returns and safe for concurrent readers.
type Store struct {
	types map[string]TableType
}

// TableType is a named preset bundling default columns, layout and styling
// for a recurring kind of data view.
type TableType struct {
	ID          string
	Description string
	Source      string
	Config      model.TableConfig
}

// Lookup returns a deep copy of the preset registered under id.
func (s *Store) Lookup(id string) (TableType, bool) {
	if s == nil {
		return TableType{}, false
	}
	tt, ok := s.types[id]
	if !ok {
		return TableType{}, false
	}
	tt.Config = tt.Config.Clone()
	return tt, true
}

// Has reports whether id names a known preset.
func (s *Store) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.types[id]
	return ok
}

// IDs returns the sorted preset identifiers.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.types))
	for id := range s.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Empty reports whether the store holds any presets.
func (s *Store) Empty() bool {
	return s == nil || len(s.types) == 0
}

// NewStore builds a store from already-constructed presets, cloning each
// config. Duplicate ids keep the last entry.
func NewStore(types ...TableType) *Store {
	store := &Store{types: make(map[string]TableType, len(types))}
	for _, tt := range types {
		if tt.ID == "" {
			continue
		}
		tt.Config = tt.Config.Clone()
		store.types[tt.ID] = tt
	}
	return store
}

// Merge combines stores into a new one. An id present in more than one
// store is an error.
func Merge(stores ...*Store) (*Store, error) {
	merged := &Store{types: make(map[string]TableType)}
	for _, s := range stores {
		if s == nil {
			continue
		}
		for id, tt := range s.types {
			if existing, ok := merged.types[id]; ok {
				return nil, fmt.Errorf("tabletype: duplicate table type %q in %s and %s", id, existing.Source, tt.Source)
			}
			merged.types[id] = tt
		}
	}
	return merged, nil
}
