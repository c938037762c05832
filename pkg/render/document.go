package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-tablegen/pkg/failsafe"
	"github.com/goliatone/go-tablegen/pkg/model"
)

// Root element attributes always present on a rendered table.
const (
	AttrTableID    = "data-table-id"
	AttrTableType  = "data-table-type"
	AttrLayoutType = "data-layout-type"
	AttrFallback   = "data-fallback"
	AttrErrorID    = "data-error-id"
)

// Document is everything an output renderer needs for one table. The grid
// holds the rows rendered up front; Batches holds the rows the client
// appends later.
type Document struct {
	TableID      string                       `json:"table_id"`
	TableType    string                       `json:"table_type,omitempty"`
	Layout       model.LayoutType             `json:"layout_type"`
	Grid         model.Grid                   `json:"grid"`
	Optimization model.OptimizationDescriptor `json:"optimization"`
	Batches      []model.Batch                `json:"batches,omitempty"`
	Styling      model.StylingSpec            `json:"styling"`
	Settings     model.GlobalSettings         `json:"settings"`
	Theme        *Theme                       `json:"theme,omitempty"`
	Validation   model.ValidationResult       `json:"validation"`
	Error        *failsafe.Payload            `json:"error,omitempty"`
	Fallback     bool                         `json:"fallback,omitempty"`
}

// Theme is the resolved theme selection handed to renderers.
type Theme struct {
	Name       string            `json:"name,omitempty"`
	Variant    string            `json:"variant,omitempty"`
	Tokens     map[string]string `json:"tokens,omitempty"`
	CSSVars    map[string]string `json:"css_vars,omitempty"`
	Stylesheet string            `json:"stylesheet,omitempty"`
}

// Attribute is one name/value pair on the table root.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attributes lists the root attributes in a stable order: identity first,
// then the optimization DOM hints sorted by name.
func (d Document) Attributes() []Attribute {
	attrs := []Attribute{{Name: AttrTableID, Value: d.TableID}}
	if d.TableType != "" {
		attrs = append(attrs, Attribute{Name: AttrTableType, Value: d.TableType})
	}
	attrs = append(attrs, Attribute{Name: AttrLayoutType, Value: string(d.Layout)})
	if d.Fallback {
		attrs = append(attrs, Attribute{Name: AttrFallback, Value: "true"})
	}
	if id := d.ErrorID(); id != "" {
		attrs = append(attrs, Attribute{Name: AttrErrorID, Value: id})
	}
	for _, name := range sortedKeys(d.Optimization.DOMHints) {
		attrs = append(attrs, Attribute{Name: name, Value: d.Optimization.DOMHints[name]})
	}
	return attrs
}

// AttributeMap is Attributes keyed by name.
func (d Document) AttributeMap() map[string]string {
	attrs := d.Attributes()
	out := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		out[attr.Name] = attr.Value
	}
	return out
}

// ErrorID returns the id of the failure behind this document, if any.
func (d Document) ErrorID() string {
	if d.Error != nil && d.Error.ErrorID != "" {
		return d.Error.ErrorID
	}
	return d.Grid.Meta["error_id"]
}

// CSSVars merges theme variables, configured variables and strategy hints.
// Later sources win.
func (d Document) CSSVars() map[string]string {
	out := make(map[string]string)
	if d.Theme != nil {
		for k, v := range d.Theme.CSSVars {
			out[k] = v
		}
	}
	for k, v := range d.Styling.CSSVars {
		out[normaliseVar(k)] = v
	}
	for k, v := range d.Optimization.CSSHints {
		out[k] = v
	}
	return out
}

// Style renders CSSVars as an inline style declaration list.
func (d Document) Style() string {
	vars := d.CSSVars()
	if len(vars) == 0 {
		return ""
	}
	parts := make([]string, 0, len(vars))
	for _, name := range sortedKeys(vars) {
		parts = append(parts, name+": "+vars[name])
	}
	return strings.Join(parts, "; ")
}

// TableClasses returns the configured table class plus modifier classes.
func (d Document) TableClasses() []string {
	classes := strings.Fields(d.Styling.TableClass)
	if len(classes) == 0 {
		classes = []string{"tablegen-table"}
	}
	classes = append(classes, "tablegen-layout--"+strings.ReplaceAll(string(d.Layout), "_", "-"))
	if d.Styling.Striped {
		classes = append(classes, "tablegen-table--striped")
	}
	if d.Styling.Bordered {
		classes = append(classes, "tablegen-table--bordered")
	}
	if d.Styling.Compact {
		classes = append(classes, "tablegen-table--compact")
	}
	if d.Fallback {
		classes = append(classes, failsafe.FallbackClass)
	}
	return classes
}

// BatchesJSON encodes the pending batches for the client loader. The
// encoder escapes <, > and & so the payload is safe inside a script element.
func (d Document) BatchesJSON() (string, error) {
	if len(d.Batches) == 0 {
		return "", nil
	}
	payload, err := json.Marshal(d.Batches)
	if err != nil {
		return "", fmt.Errorf("render: encode batches: %w", err)
	}
	return string(payload), nil
}

// EmptyMessage is shown when the grid has no rows.
func (d Document) EmptyMessage() string {
	if d.Settings.EmptyMessage != "" {
		return d.Settings.EmptyMessage
	}
	return model.DefaultEmptyMessage
}

// Incremental reports whether the client loader has work to do.
func (d Document) Incremental() bool {
	return d.Optimization.Strategy != model.StrategyFullRender && d.Optimization.Strategy != ""
}

func normaliseVar(name string) string {
	if strings.HasPrefix(name, "--") {
		return name
	}
	return "--" + name
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
