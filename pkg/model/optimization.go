package model

// Strategy names a rendering strategy chosen from the row count.
type Strategy string

const (
	StrategyFullRender    Strategy = "full_render"
	StrategyLazyLoading   Strategy = "lazy_loading"
	StrategyVirtualScroll Strategy = "virtual_scroll"
)

func (s Strategy) String() string {
	return string(s)
}

// OptimizationDescriptor carries the strategy plus the hints the client
// runtime consumes. DOMHints become data attributes on the table root.
type OptimizationDescriptor struct {
	Strategy Strategy          `json:"strategy"`
	DOMHints map[string]string `json:"dom_hints,omitempty"`
	CSSHints map[string]string `json:"css_hints,omitempty"`
	JSHints  map[string]any    `json:"js_hints,omitempty"`
}

// BatchRow is one row inside the client lazy-load payload.
type BatchRow struct {
	Type  string      `json:"type,omitempty"`
	Cells []BatchCell `json:"cells"`
}

// BatchCell mirrors the client cell contract.
type BatchCell struct {
	Label          string `json:"label,omitempty"`
	Value          any    `json:"value,omitempty"`
	FormattedValue string `json:"formatted_value,omitempty"`
	Colspan        int    `json:"colspan,omitempty"`
	Rowspan        int    `json:"rowspan,omitempty"`
	Class          string `json:"class,omitempty"`
}

// Batch is a pre-partitioned slice of rows appended by the client loader.
type Batch []BatchRow
