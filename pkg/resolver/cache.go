package resolver

import (
	"encoding/json"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// DataShape summarises a dataset for cache keying: the union of top-level
// keys. Row counts are left out so growing datasets keep hitting the cache.
type DataShape struct {
	Keys []string
}

// ShapeOf collects the sorted union of top-level record keys.
func ShapeOf(rows []model.Record) DataShape {
	seen := make(map[string]struct{})
	for _, row := range rows {
		for _, entry := range row.Entries {
			seen[entry.Key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return DataShape{Keys: keys}
}

type cacheEntry struct {
	config model.TableConfig
	result model.ValidationResult
}

// resolveCache memoises resolve results. golang-lru guards its own state so
// concurrent readers never block each other for long; two goroutines missing
// on the same key both compute and the last Add wins.
type resolveCache struct {
	entries *lru.Cache[uint64, cacheEntry]
}

func newResolveCache(size int) (*resolveCache, error) {
	entries, err := lru.New[uint64, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &resolveCache{entries: entries}, nil
}

func (c *resolveCache) get(key uint64) (model.TableConfig, model.ValidationResult, bool) {
	entry, ok := c.entries.Get(key)
	if !ok {
		return model.TableConfig{}, model.ValidationResult{}, false
	}
	return entry.config.Clone(), entry.result.Clone(), true
}

func (c *resolveCache) add(key uint64, cfg model.TableConfig, result model.ValidationResult) {
	c.entries.Add(key, cacheEntry{config: cfg.Clone(), result: result.Clone()})
}

func (c *resolveCache) len() int {
	return c.entries.Len()
}

// fingerprint hashes the resolve inputs. Overrides marshal deterministically
// because encoding/json sorts map keys.
func fingerprint(tableType string, overrides Overrides, shape DataShape) (uint64, error) {
	payload, err := json.Marshal(overrides)
	if err != nil {
		return 0, err
	}
	h := xxhash.New()
	_, _ = h.WriteString(tableType)
	_, _ = h.WriteString("\x00")
	_, _ = h.Write(payload)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strconv.Itoa(len(shape.Keys)))
	for _, key := range shape.Keys {
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(key)
	}
	return h.Sum64(), nil
}
