// Package text renders tables as plain-text grids for terminals and logs.
package text

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/render"
)

// Name is the registry name of this renderer.
const Name = "text"

type Option func(*Renderer)

// WithRowLines draws a separator between every row.
func WithRowLines(enabled bool) Option {
	return func(r *Renderer) {
		r.rowLines = enabled
	}
}

// WithBorder toggles the outer border.
func WithBorder(enabled bool) Option {
	return func(r *Renderer) {
		r.border = enabled
	}
}

// Renderer writes a Document through tablewriter. Spanned cells are laid
// out on the underlying column grid with blank continuation cells, and
// rendered rows only include what the grid holds up front.
type Renderer struct {
	rowLines bool
	border   bool
}

var _ render.Renderer = (*Renderer)(nil)

func New(options ...Option) *Renderer {
	r := &Renderer{border: true}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

func (r *Renderer) Render(ctx context.Context, doc render.Document, options render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.write(&buf, doc, options); err != nil {
		return nil, fmt.Errorf("text renderer: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) write(w io.Writer, doc render.Document, options render.RenderOptions) error {
	grid := doc.Grid
	if grid.Caption != "" {
		fmt.Fprintln(w, grid.Caption)
	}
	if doc.Error != nil {
		fmt.Fprintf(w, "error %s: %s\n", doc.Error.ErrorID, doc.Error.UserMessage)
		if doc.Error.ShowDetails {
			for _, issue := range doc.Error.Errors {
				fmt.Fprintf(w, "  - %s\n", issue.Error())
			}
			for _, warning := range doc.Error.Warnings {
				fmt.Fprintf(w, "  ! %s\n", warning)
			}
		}
	}
	if doc.Fallback {
		fmt.Fprintln(w, "(simplified view)")
	}

	if grid.Empty() {
		fmt.Fprintln(w, doc.EmptyMessage())
	} else {
		width := columnCount(grid)
		table := tablewriter.NewWriter(w)
		table.SetAutoWrapText(false)
		table.SetAutoFormatHeaders(false)
		table.SetAlignment(tablewriter.ALIGN_LEFT)
		table.SetRowLine(r.rowLines)
		table.SetBorder(r.border)

		if len(grid.Headers) > 0 {
			header := expand(grid.Headers[len(grid.Headers)-1:], width)[0]
			table.SetHeader(header)
		}
		for _, section := range grid.Sections {
			if section.Title != "" {
				title := make([]string, width)
				title[0] = "[" + section.Title + "]"
				table.Append(title)
			}
			cells := make([][]model.GridCell, 0, len(section.Rows))
			for _, row := range section.Rows {
				cells = append(cells, indent(row))
			}
			table.AppendBulk(expand(cells, width))
		}
		table.Render()
	}

	if doc.Incremental() {
		pending := 0
		for _, batch := range doc.Batches {
			pending += len(batch)
		}
		fmt.Fprintf(w, "%s: showing %d rows, %d more in %d batches\n",
			doc.Optimization.Strategy, grid.RowCount(), pending, len(doc.Batches))
	}
	if options.ShowMeta && len(grid.Meta) > 0 {
		keys := make([]string, 0, len(grid.Meta))
		for k := range grid.Meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s=%s\n", k, grid.Meta[k])
		}
	}
	return nil
}

// indent prefixes the first cell of nested and grouped rows by level.
func indent(row model.GridRow) []model.GridCell {
	if row.Level <= 0 || len(row.Cells) == 0 {
		return row.Cells
	}
	cells := append([]model.GridCell{}, row.Cells...)
	cells[0].Text = strings.Repeat("  ", row.Level) + cells[0].Text
	return cells
}

// expand lays rows out on a width-column grid. Columns still covered by a
// rowspan from an earlier row are skipped; colspans leave blanks.
func expand(rows [][]model.GridCell, width int) [][]string {
	covered := make([]int, width)
	out := make([][]string, 0, len(rows))
	for _, cells := range rows {
		line := make([]string, width)
		busy := make([]bool, width)
		for col := range covered {
			if covered[col] > 0 {
				busy[col] = true
				covered[col]--
			}
		}
		col := 0
		for _, cell := range cells {
			for col < width && busy[col] {
				col++
			}
			if col >= width {
				break
			}
			line[col] = cell.Text
			span := max(cell.Colspan, 1)
			for c := col; c < col+span && c < width; c++ {
				busy[c] = true
				covered[c] = max(cell.Rowspan, 1) - 1
			}
			col += span
		}
		out = append(out, line)
	}
	return out
}

func columnCount(grid model.Grid) int {
	widest := 1
	measure := func(cells []model.GridCell) {
		width := 0
		for _, cell := range cells {
			width += max(cell.Colspan, 1)
		}
		widest = max(widest, width)
	}
	for _, row := range grid.Headers {
		measure(row)
	}
	for _, section := range grid.Sections {
		for _, row := range section.Rows {
			measure(row.Cells)
		}
	}
	return widest
}
