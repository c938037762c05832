// Package format turns dataset values into rendered cells according to the
// column type.
package format

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-tablegen/pkg/model"
)

// UnsetClass marks placeholder cells.
const UnsetClass = "is-unset"

var (
	defaultPolicy = sync.OnceValue(func() *bluemonday.Policy {
		return bluemonday.UGCPolicy()
	})
	stripPolicy = sync.OnceValue(func() *bluemonday.Policy {
		return bluemonday.StrictPolicy()
	})
)

func plainText(markup string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy().Sanitize(markup)))
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithSanitize toggles sanitising of html cells. When disabled html values are
// trusted as-is.
func WithSanitize(enabled bool) Option {
	return func(f *Formatter) {
		f.sanitize = enabled
	}
}

// WithPolicy replaces the bluemonday UGC policy used for html cells.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(f *Formatter) {
		if policy != nil {
			f.policy = policy
		}
	}
}

// Formatter formats cells for one render. It is immutable once built.
type Formatter struct {
	settings model.GlobalSettings
	sanitize bool
	policy   *bluemonday.Policy
}

// New builds a Formatter for the given settings.
func New(settings model.GlobalSettings, options ...Option) *Formatter {
	f := &Formatter{settings: settings, sanitize: true}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.policy == nil {
		f.policy = defaultPolicy()
	}
	return f
}

// ForConfig builds a Formatter from a resolved configuration.
func ForConfig(cfg model.TableConfig) *Formatter {
	return New(cfg.Settings, WithSanitize(cfg.Features.Sanitize))
}

// UnsetLabel returns the placeholder text.
func (f *Formatter) UnsetLabel() string {
	if f.settings.UnsetLabel != "" {
		return f.settings.UnsetLabel
	}
	return model.DefaultUnsetLabel
}

// Unset builds a placeholder cell.
func (f *Formatter) Unset() model.GridCell {
	return model.GridCell{Text: f.UnsetLabel(), Unset: true, Class: UnsetClass}
}

// Cell formats value for col. Missing and empty values become the unset
// placeholder; spans and classes carried by a model.Cell are preserved.
func (f *Formatter) Cell(col model.Column, value any) model.GridCell {
	c := model.CellOf(value)
	out := model.GridCell{
		Key:     col.Key,
		Colspan: c.Colspan,
		Rowspan: c.Rowspan,
	}
	colType := col.EffectiveType()
	if c.Type != "" {
		colType = c.Type
	}

	switch {
	case c.Unset():
		out.Text = f.UnsetLabel()
		out.Unset = true
		out.Class = joinClass(col.Class, c.Class, UnsetClass)
		return out
	case c.FormattedValue != "":
		out.Text = c.FormattedValue
	case model.IsEmptyValue(c.Value):
		out.Text = c.Label
	default:
		out.Text, out.HTML = f.value(colType, col.Format, c.Value)
	}
	out.Class = joinClass(col.Class, c.Class, "tablegen-cell--"+string(colType))
	return out
}

// BatchCell formats value into the client batch contract.
func (f *Formatter) BatchCell(col model.Column, value any, _ bool) model.BatchCell {
	c := model.CellOf(value)
	cell := f.Cell(col, value)
	formatted := cell.Text
	if cell.HTML != "" {
		formatted = cell.HTML
	}
	return model.BatchCell{
		Label:          c.Label,
		Value:          c.Value,
		FormattedValue: formatted,
		Colspan:        cell.Colspan,
		Rowspan:        cell.Rowspan,
		Class:          cell.Class,
	}
}

// Text formats value as plain text; markup-producing types fall back to
// their plain alternative.
func (f *Formatter) Text(col model.Column, value any) string {
	return f.Cell(col, value).Text
}

// value returns the plain text for a non-empty raw value plus, for link and
// markup types, the HTML rendering.
func (f *Formatter) value(colType model.ColumnType, layout string, raw any) (string, string) {
	switch colType {
	case model.ColumnTypeNumber:
		if text, ok := f.number(raw, layout); ok {
			return text, ""
		}
	case model.ColumnTypeCurrency:
		if text, ok := f.currency(raw); ok {
			return text, ""
		}
	case model.ColumnTypeDate:
		if text, ok := formatTime(raw, pick(layout, f.settings.DateFormat, model.DefaultDateFormat)); ok {
			return text, ""
		}
	case model.ColumnTypeDateTime:
		if text, ok := formatTime(raw, pick(layout, f.settings.DateTimeFormat, model.DefaultDateTimeFormat)); ok {
			return text, ""
		}
	case model.ColumnTypeBoolean:
		if b, ok := toBool(raw); ok {
			if b {
				return "Yes", ""
			}
			return "No", ""
		}
	case model.ColumnTypeEmail:
		addr := strings.TrimSpace(model.Stringify(raw))
		if strings.Contains(addr, "@") && !strings.ContainsAny(addr, " <>\"") {
			esc := html.EscapeString(addr)
			return addr, `<a href="mailto:` + esc + `">` + esc + `</a>`
		}
	case model.ColumnTypeURL:
		link := strings.TrimSpace(model.Stringify(raw))
		if safeURL(link) {
			esc := html.EscapeString(link)
			return link, `<a href="` + esc + `" target="_blank" rel="noopener noreferrer">` + esc + `</a>`
		}
	case model.ColumnTypeBadge:
		text := model.Stringify(raw)
		return text, `<span class="tablegen-badge tablegen-badge--` + slug(text) + `">` + html.EscapeString(text) + `</span>`
	case model.ColumnTypeFileDisplay:
		if name, markup, ok := fileLink(raw); ok {
			return name, markup
		}
	case model.ColumnTypeHTML:
		markup := model.Stringify(raw)
		if f.sanitize {
			markup = f.policy.Sanitize(markup)
		}
		return plainText(markup), markup
	}
	return model.Stringify(raw), ""
}

func pick(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func joinClass(classes ...string) string {
	parts := make([]string, 0, len(classes))
	for _, c := range classes {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, " ")
}

func slug(text string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "default"
	}
	return out
}
