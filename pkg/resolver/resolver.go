// Package resolver merges table-type presets with caller overrides and
// validates the result.
package resolver

import (
	"fmt"
	"log/slog"

	"github.com/goliatone/go-tablegen/pkg/metrics"
	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/tabletype"
)

// Option configures a Resolver.
type Option func(*Resolver)

// Resolver turns (table type, overrides) into a resolved TableConfig and its
// ValidationResult. It is safe for concurrent use.
type Resolver struct {
	store     *tabletype.Store
	policy    SeverityPolicy
	logger    *slog.Logger
	recorder  metrics.Recorder
	cacheSize int
	cache     *resolveCache
}

// WithStore sets the preset store. Without it only DefaultConfig is used.
func WithStore(store *tabletype.Store) Option {
	return func(r *Resolver) {
		r.store = store
	}
}

// WithSeverityPolicy replaces DefaultSeverityPolicy.
func WithSeverityPolicy(policy SeverityPolicy) Option {
	return func(r *Resolver) {
		r.policy = policy
	}
}

// WithLogger sets the logger used for silent issues.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics reports cache lookups to recorder.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(r *Resolver) {
		r.recorder = metrics.OrNop(recorder)
	}
}

// WithCache enables the read-through cache holding up to size entries.
func WithCache(size int) Option {
	return func(r *Resolver) {
		r.cacheSize = size
	}
}

// New builds a Resolver.
func New(options ...Option) (*Resolver, error) {
	r := &Resolver{
		policy:   DefaultSeverityPolicy(),
		logger:   slog.Default(),
		recorder: metrics.Nop{},
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.cacheSize > 0 {
		cache, err := newResolveCache(r.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("resolver: init cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// DefaultConfig is the minimal global default used when no preset matches:
// no static columns, key_value_pairs layout and every feature on.
func DefaultConfig() model.TableConfig {
	return model.TableConfig{
		Columns: []model.Column{},
		Layout: model.LayoutSpec{
			Type:          model.DefaultLayoutType,
			ColumnsPerRow: 1,
			ShowHeaders:   true,
		},
		Features: model.DefaultFeatureFlags(),
		Settings: defaultSettings(),
	}
}

func defaultSettings() model.GlobalSettings {
	return model.GlobalSettings{
		UnsetLabel:     model.DefaultUnsetLabel,
		DateFormat:     model.DefaultDateFormat,
		DateTimeFormat: model.DefaultDateTimeFormat,
		EmptyMessage:   model.DefaultEmptyMessage,
	}
}

// Resolve merges overrides over the preset registered as tableTypeID (or
// DefaultConfig) and validates the result. A failing result never stops
// resolution: the returned config is always renderable.
func (r *Resolver) Resolve(tableTypeID string, overrides Overrides) (model.TableConfig, model.ValidationResult) {
	return r.resolve(tableTypeID, overrides, nil, DataShape{})
}

// ResolveShape is Resolve with the data shape folded into the cache key.
func (r *Resolver) ResolveShape(tableTypeID string, overrides Overrides, shape DataShape) (model.TableConfig, model.ValidationResult) {
	return r.resolve(tableTypeID, overrides, nil, shape)
}

// ResolveRaw decodes an untyped caller config first. Decode issues are
// classified with the same severity policy as validation issues.
func (r *Resolver) ResolveRaw(tableTypeID string, raw map[string]any, shape DataShape) (model.TableConfig, model.ValidationResult) {
	overrides, issues := DecodeOverrides(raw)
	return r.resolve(tableTypeID, overrides, issues, shape)
}

// resolve skips the cache when decode issues exist; they are not part of the key.
func (r *Resolver) resolve(tableTypeID string, overrides Overrides, decodeIssues []model.FieldError, shape DataShape) (model.TableConfig, model.ValidationResult) {
	var key uint64
	cacheable := r.cache != nil && len(decodeIssues) == 0
	if cacheable {
		fp, err := fingerprint(tableTypeID, overrides, shape)
		if err != nil {
			cacheable = false
			r.logger.Debug("resolver cache fingerprint failed", "table_type", tableTypeID, "error", err)
		} else {
			key = fp
			if cfg, result, ok := r.cache.get(key); ok {
				r.recorder.CacheLookup(true)
				return cfg, result
			}
			r.recorder.CacheLookup(false)
		}
	}

	issues := append([]model.FieldError{}, decodeIssues...)
	base, ok := r.base(tableTypeID)
	if !ok && tableTypeID != "" {
		issues = append(issues, model.FieldError{
			Field:   "table_type",
			Code:    model.IssueUnknownTableType,
			Message: fmt.Sprintf("unknown table type %q; using global defaults", tableTypeID),
		})
	}

	cfg := Merge(base, overrides)
	fillSettings(&cfg.Settings)
	issues = append(issues, Validate(&cfg)...)
	result := r.classify(tableTypeID, issues)

	if cacheable {
		r.cache.add(key, cfg, result)
	}
	return cfg, result
}

func (r *Resolver) base(tableTypeID string) (model.TableConfig, bool) {
	if tableTypeID == "" || r.store == nil {
		return DefaultConfig(), false
	}
	tt, ok := r.store.Lookup(tableTypeID)
	if !ok {
		return DefaultConfig(), false
	}
	return tt.Config, true
}

func (r *Resolver) classify(tableTypeID string, issues []model.FieldError) model.ValidationResult {
	result := model.ValidationResult{Valid: true}
	for _, issue := range issues {
		switch r.policy.For(issue.Code) {
		case SeveritySilent:
			r.logger.Debug("table config issue",
				"table_type", tableTypeID,
				"field", issue.Field,
				"code", issue.Code,
				"message", issue.Message,
			)
		case SeverityWarning:
			result.Warnings = append(result.Warnings, issue.Error())
		default:
			result.Valid = false
			result.Errors = append(result.Errors, issue)
		}
	}
	return result
}

// CacheLen reports the number of cached entries; zero when caching is off.
func (r *Resolver) CacheLen() int {
	if r.cache == nil {
		return 0
	}
	return r.cache.len()
}

func fillSettings(s *model.GlobalSettings) {
	defaults := defaultSettings()
	if s.UnsetLabel == "" {
		s.UnsetLabel = defaults.UnsetLabel
	}
	if s.DateFormat == "" {
		s.DateFormat = defaults.DateFormat
	}
	if s.DateTimeFormat == "" {
		s.DateTimeFormat = defaults.DateTimeFormat
	}
	if s.EmptyMessage == "" {
		s.EmptyMessage = defaults.EmptyMessage
	}
}
