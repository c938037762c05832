package model

// GridCell is one rendered cell. Text is always the plain rendering; HTML is
// set only by formatters that produce safe markup and takes precedence in
// markup output.
type GridCell struct {
	Text    string  `json:"text,omitempty"`
	HTML    string  `json:"html,omitempty"`
	Unset   bool    `json:"unset,omitempty"`
	Header  bool    `json:"header,omitempty"`
	Colspan int     `json:"colspan,omitempty"`
	Rowspan int     `json:"rowspan,omitempty"`
	Class   string  `json:"class,omitempty"`
	Level   int     `json:"level,omitempty"`
	Key     string  `json:"key,omitempty"`
	Width   float64 `json:"width,omitempty"`
}

// GridRow is a rendered row. Kind distinguishes data rows from group and
// category header rows.
type GridRow struct {
	Kind  string     `json:"kind,omitempty"`
	Class string     `json:"class,omitempty"`
	Level int        `json:"level,omitempty"`
	Cells []GridCell `json:"cells"`
}

// Row kinds.
const (
	RowKindData     = "data"
	RowKindGroup    = "group"
	RowKindCategory = "category"
	RowKindPair     = "pair"
)

// GridSection is a tbody-equivalent block.
type GridSection struct {
	Title string    `json:"title,omitempty"`
	Class string    `json:"class,omitempty"`
	Rows  []GridRow `json:"rows"`
}

// Grid is the structured output of a layout renderer.
type Grid struct {
	Layout   LayoutType        `json:"layout"`
	Caption  string            `json:"caption,omitempty"`
	Headers  [][]GridCell      `json:"headers,omitempty"`
	Sections []GridSection     `json:"sections"`
	Meta     map[string]string `json:"meta,omitempty"`
}

// RowCount counts rows across all sections.
func (g Grid) RowCount() int {
	total := 0
	for _, section := range g.Sections {
		total += len(section.Rows)
	}
	return total
}

// Empty reports whether the grid has no body rows.
func (g Grid) Empty() bool {
	return g.RowCount() == 0
}
