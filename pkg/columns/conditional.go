package columns

import (
	"strings"

	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/visibility"
)

// Built-in predicates understood without the expression evaluator.
const (
	PredicateHasValue = "has_value"
	PredicateAlways   = "always"
	PredicateNever    = "never"
)

func (c *Computer) filter(cols []model.Column, rows []model.Record, extras map[string]any) []model.Column {
	var values []map[string]any
	out := cols[:0:0]
	for _, col := range cols {
		rule := strings.TrimSpace(col.Condition)
		if rule == "" {
			out = append(out, col)
			continue
		}
		if values == nil {
			values = make([]map[string]any, len(rows))
			for i, row := range rows {
				values[i] = row.Map()
			}
		}
		visible, err := c.visible(col.Key, rule, values, extras)
		if err != nil {
			c.logger.Warn("column predicate failed; keeping column",
				"column", col.Key,
				"predicate", rule,
				"error", err,
			)
			out = append(out, col)
			continue
		}
		if visible {
			out = append(out, col)
		}
	}
	return out
}

// visible evaluates rule across the dataset. Expressions default to the
// "any:" quantifier; "all:" requires every row to match.
func (c *Computer) visible(key, rule string, rows []map[string]any, extras map[string]any) (bool, error) {
	switch rule {
	case PredicateAlways:
		return true, nil
	case PredicateNever:
		return false, nil
	case PredicateHasValue:
		for _, row := range rows {
			if !model.IsEmptyValue(row[key]) {
				return true, nil
			}
		}
		return false, nil
	}

	requireAll := false
	switch {
	case strings.HasPrefix(rule, "all:"):
		requireAll = true
		rule = strings.TrimSpace(strings.TrimPrefix(rule, "all:"))
	case strings.HasPrefix(rule, "any:"):
		rule = strings.TrimSpace(strings.TrimPrefix(rule, "any:"))
	}

	for _, row := range rows {
		ok, err := c.evaluator.Eval(key, rule, visibility.Context{Values: row, Extras: extras})
		if err != nil {
			return false, err
		}
		if ok && !requireAll {
			return true, nil
		}
		if !ok && requireAll {
			return false, nil
		}
	}
	return requireAll, nil
}
