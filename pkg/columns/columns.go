// Package columns derives the effective column list for one render: dynamic
// discovery, conditional filtering and width computation, in that order.
package columns

import (
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/visibility"
	"github.com/goliatone/go-tablegen/pkg/visibility/expr"
)

// Option configures a Computer.
type Option func(*Computer)

// WithEvaluator replaces the expression evaluator used for conditional
// predicates.
func WithEvaluator(evaluator visibility.Evaluator) Option {
	return func(c *Computer) {
		if evaluator != nil {
			c.evaluator = evaluator
		}
	}
}

// WithLogger sets the logger used to report malformed predicates.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Computer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Computer computes columns. It holds no per-call state.
type Computer struct {
	evaluator visibility.Evaluator
	logger    *slog.Logger
}

// New builds a Computer backed by the expr evaluator.
func New(options ...Option) *Computer {
	c := &Computer{
		evaluator: expr.New(),
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Options selects the stages Compute runs.
type Options struct {
	Dynamic     bool
	Conditional bool
	AutoWidth   bool
	// Section keeps only columns assigned to the named section. Dynamic
	// discovery is skipped in section mode since discovered keys carry no
	// section.
	Section string
	// Exclude lists keys never turned into dynamic columns, such as the
	// nested-table children key.
	Exclude []string
	Extras  map[string]any
}

// OptionsFor derives Options from a resolved configuration.
func OptionsFor(cfg model.TableConfig) Options {
	opts := Options{
		Dynamic:     cfg.Features.DynamicColumns,
		Conditional: cfg.Features.ConditionalColumns,
		AutoWidth:   cfg.Layout.AutoWidth,
		Extras: map[string]any{
			"layout_type": string(cfg.Layout.Type),
			"locale":      cfg.Settings.Locale,
			"currency":    cfg.Settings.Currency,
		},
	}
	if key := ChildrenKey(cfg.Layout); key != "" {
		opts.Exclude = append(opts.Exclude, key)
	}
	return opts
}

// ChildrenKey returns the key holding child records when the layout renders
// nested data, or "" otherwise.
func ChildrenKey(layout model.LayoutSpec) string {
	if layout.Type != model.LayoutNestedTable && !(layout.Type == model.LayoutStandardTable && layout.NestedData) {
		return ""
	}
	if layout.Nesting.ChildrenKey != "" {
		return layout.Nesting.ChildrenKey
	}
	return "children"
}

// Compute returns the effective columns. Keys are unique in the result: a
// repeated static key keeps its first definition and discovered keys that
// collide with static ones are dropped.
func (c *Computer) Compute(columns []model.Column, rows []model.Record, opts Options) []model.Column {
	known := make(map[string]struct{}, len(columns))
	out := make([]model.Column, 0, len(columns))
	for _, col := range columns {
		if col.Key == "" {
			continue
		}
		if _, dup := known[col.Key]; dup {
			continue
		}
		known[col.Key] = struct{}{}
		if opts.Section != "" && col.Section != opts.Section {
			continue
		}
		out = append(out, col)
	}

	if opts.Dynamic && opts.Section == "" {
		for _, key := range opts.Exclude {
			known[key] = struct{}{}
		}
		out = append(out, discover(rows, known)...)
	}

	if opts.Conditional {
		out = c.filter(out, rows, opts.Extras)
	}

	if opts.AutoWidth {
		out = AssignWidths(out, rows)
	}
	return out
}

func discover(rows []model.Record, known map[string]struct{}) []model.Column {
	var found []model.Column
	for _, row := range rows {
		for _, entry := range row.Entries {
			if entry.Key == "" {
				continue
			}
			if _, ok := known[entry.Key]; ok {
				continue
			}
			known[entry.Key] = struct{}{}
			colType := model.ColumnTypeText
			if cell, ok := entry.Value.(model.Cell); ok && cell.Type != "" {
				colType = cell.Type
			}
			found = append(found, model.Column{
				Key:     entry.Key,
				Label:   Humanize(entry.Key),
				Type:    colType,
				Dynamic: true,
			})
		}
	}
	return found
}

// Humanize turns a record key into a display label: "floor_count" becomes
// "Floor count".
func Humanize(key string) string {
	words := strings.FieldsFunc(key, func(r rune) bool {
		return r == '_' || r == '-' || r == '.' || r == ' '
	})
	if len(words) == 0 {
		return key
	}
	label := strings.Join(words, " ")
	first, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(first)) + label[size:]
}
