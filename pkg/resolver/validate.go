package resolver

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-tablegen/pkg/model"
)

const widthBudget = 100.0

// Validate checks a merged configuration and coerces it in place to the
// nearest renderable shape. Every problem found is returned as an issue; the
// caller maps issues onto severities.
func Validate(cfg *model.TableConfig) []model.FieldError {
	var issues []model.FieldError
	add := func(field, code, format string, args ...any) {
		issues = append(issues, model.FieldError{Field: field, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.Columns == nil {
		add("columns", model.IssueMissingColumns, "columns is required")
		cfg.Columns = []model.Column{}
	}

	raw := strings.TrimSpace(string(cfg.Layout.Type))
	if raw == "" {
		add("layout.type", model.IssueUnknownLayoutType, "layout type missing; using %s", model.DefaultLayoutType)
		cfg.Layout.Type = model.DefaultLayoutType
	} else if parsed, ok := model.ParseLayoutType(raw); ok {
		cfg.Layout.Type = parsed
	} else {
		add("layout.type", model.IssueUnknownLayoutType, "unknown layout type %q; using %s", raw, model.DefaultLayoutType)
		cfg.Layout.Type = model.DefaultLayoutType
	}

	if cfg.Layout.ColumnsPerRow < 0 {
		add("layout.columns_per_row", model.IssueInvalidColumns, "columns_per_row must be at least 1, got %d", cfg.Layout.ColumnsPerRow)
		cfg.Layout.ColumnsPerRow = 1
	}
	if cfg.Layout.Nesting.MaxDepth < 0 {
		cfg.Layout.Nesting.MaxDepth = 0
	}

	seen := make(map[string]int, len(cfg.Columns))
	kept := cfg.Columns[:0:0]
	explicit := 0.0
	for i, col := range cfg.Columns {
		field := fmt.Sprintf("columns[%d]", i)
		col.Key = strings.TrimSpace(col.Key)
		if col.Key == "" {
			add(field+".key", model.IssueEmptyColumnKey, "column key is required")
			continue
		}
		if first, dup := seen[col.Key]; dup {
			add(field+".key", model.IssueDuplicateColumnKey, "duplicate column key %q (first defined at columns[%d])", col.Key, first)
			continue
		}
		seen[col.Key] = i
		if col.Width < 0 || col.Width > widthBudget {
			add(field+".width", model.IssueInvalidWidth, "width %.2f outside 0..100; using auto width", col.Width)
			col.Width = 0
		}
		explicit += col.Width
		kept = append(kept, col)
	}
	cfg.Columns = kept

	if explicit > widthBudget {
		add("columns", model.IssueWidthOverflow, "explicit column widths sum to %.2f, above %.0f", explicit, widthBudget)
	}
	return issues
}
