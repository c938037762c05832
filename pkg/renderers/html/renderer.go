package html

import (
	"context"
	"fmt"
	stdhtml "html"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-tablegen/pkg/failsafe"
	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/render"
	rendertemplate "github.com/goliatone/go-tablegen/pkg/render/template"
	"github.com/goliatone/go-tablegen/pkg/render/template/gotemplate"
)

// Name is the registry name of this renderer.
const Name = "html"

// DefaultFallbackNotice is shown above fallback tables.
const DefaultFallbackNotice = "This table is shown in a simplified form."

// Template names inside the template bundle.
const (
	TemplateTable    = "table.tmpl"
	TemplateFallback = "fallback.tmpl"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	fallbackNotice   string
}

// WithTemplatesFS supplies an alternate template bundle. It must provide the
// same template names as TemplatesFS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template engine.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithFallbackNotice replaces DefaultFallbackNotice.
func WithFallbackNotice(notice string) Option {
	return func(cfg *config) {
		if notice != "" {
			cfg.fallbackNotice = notice
		}
	}
}

// Renderer produces an HTML fragment (or document) from a render.Document.
type Renderer struct {
	templates      rendertemplate.TemplateRenderer
	fallbackNotice string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
func New(options ...Option) (*Renderer, error) {
	cfg := config{fallbackNotice: DefaultFallbackNotice}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	engine := cfg.templateRenderer
	if engine == nil {
		built, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("html renderer: configure template renderer: %w", err)
		}
		engine = built
	}
	return &Renderer{templates: engine, fallbackNotice: cfg.fallbackNotice}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render executes the table template, or the fallback template when the
// document carries a fallback grid.
func (r *Renderer) Render(ctx context.Context, doc render.Document, options render.RenderOptions) ([]byte, error) {
	if r == nil || r.templates == nil {
		return nil, fmt.Errorf("html renderer: template renderer is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := r.view(doc, options)
	if err != nil {
		return nil, err
	}
	name := TemplateTable
	if doc.Fallback {
		name = TemplateFallback
	}
	out, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("html renderer: render template: %w", err)
	}
	return []byte(out), nil
}

type cellView struct {
	Tag     string `json:"tag"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
	Class   string `json:"class,omitempty"`
	Colspan string `json:"colspan,omitempty"`
	Rowspan string `json:"rowspan,omitempty"`
	Scope   string `json:"scope,omitempty"`
	Key     string `json:"key,omitempty"`
	Width   string `json:"width,omitempty"`
}

type rowView struct {
	Class string     `json:"class,omitempty"`
	Level string     `json:"level,omitempty"`
	Cells []cellView `json:"cells"`
}

type sectionView struct {
	Title string    `json:"title,omitempty"`
	Class string    `json:"class,omitempty"`
	Rows  []rowView `json:"rows"`
}

type view struct {
	Standalone     bool              `json:"standalone"`
	Lang           string            `json:"lang"`
	Title          string            `json:"title"`
	Stylesheets    []string          `json:"stylesheets,omitempty"`
	RootAttrs      string            `json:"root_attrs"`
	Style          string            `json:"style,omitempty"`
	Classes        []string          `json:"classes"`
	Caption        string            `json:"caption,omitempty"`
	HeaderClass    string            `json:"header_class,omitempty"`
	Headers        [][]cellView      `json:"headers,omitempty"`
	Sections       []sectionView     `json:"sections"`
	Span           string            `json:"span"`
	EmptyMessage   string            `json:"empty_message"`
	BatchesJSON    string            `json:"batches_json,omitempty"`
	RuntimeScript  string            `json:"runtime_script,omitempty"`
	Error          *failsafe.Payload `json:"error,omitempty"`
	FallbackNotice string            `json:"fallback_notice,omitempty"`
	ErrorID        string            `json:"error_id,omitempty"`
}

func (r *Renderer) view(doc render.Document, options render.RenderOptions) (view, error) {
	grid := doc.Grid
	v := view{
		Standalone:   options.Standalone,
		Lang:         langOf(doc.Settings.Locale),
		Title:        titleOf(doc),
		Stylesheets:  stylesheets(doc, options),
		RootAttrs:    rootAttrs(doc.Attributes()),
		Style:        doc.Style(),
		Classes:      doc.TableClasses(),
		Caption:      grid.Caption,
		HeaderClass:  doc.Styling.HeaderClass,
		EmptyMessage: doc.EmptyMessage(),
		Error:        doc.Error,
		Sections:     []sectionView{},
	}
	if doc.Fallback {
		v.FallbackNotice = r.fallbackNotice
		v.ErrorID = doc.ErrorID()
	}

	for _, headerRow := range grid.Headers {
		cells := make([]cellView, 0, len(headerRow))
		for _, cell := range headerRow {
			cv := toCellView(cell)
			cv.Tag, cv.Scope = "th", "col"
			cells = append(cells, cv)
		}
		v.Headers = append(v.Headers, cells)
	}
	for _, section := range grid.Sections {
		sv := sectionView{Title: section.Title, Class: section.Class, Rows: make([]rowView, 0, len(section.Rows))}
		for _, row := range section.Rows {
			rv := rowView{Class: rowClass(row, doc.Styling.RowClass), Level: positive(row.Level)}
			for _, cell := range row.Cells {
				rv.Cells = append(rv.Cells, toCellView(cell))
			}
			sv.Rows = append(sv.Rows, rv)
		}
		v.Sections = append(v.Sections, sv)
	}
	v.Span = strconv.Itoa(span(grid))

	if doc.Incremental() {
		payload, err := doc.BatchesJSON()
		if err != nil {
			return view{}, fmt.Errorf("html renderer: %w", err)
		}
		v.BatchesJSON = payload
		v.RuntimeScript = options.RuntimeScript
	}
	return v, nil
}

func toCellView(cell model.GridCell) cellView {
	cv := cellView{Tag: "td", Text: cell.Text, HTML: cell.HTML, Class: cell.Class, Key: cell.Key}
	if cell.Header {
		cv.Tag, cv.Scope = "th", "row"
	}
	if cell.Colspan > 1 {
		cv.Colspan = strconv.Itoa(cell.Colspan)
	}
	if cell.Rowspan > 1 {
		cv.Rowspan = strconv.Itoa(cell.Rowspan)
	}
	if cell.Width > 0 {
		cv.Width = strconv.FormatFloat(cell.Width, 'f', -1, 64) + "%"
	}
	return cv
}

// positive renders n for templates, which see JSON numbers as floats.
func positive(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func rowClass(row model.GridRow, dataClass string) string {
	classes := []string{}
	if row.Kind != "" {
		classes = append(classes, "tablegen-row--"+row.Kind)
	}
	if row.Kind == model.RowKindData && dataClass != "" {
		classes = append(classes, dataClass)
	}
	if row.Class != "" {
		classes = append(classes, row.Class)
	}
	return strings.Join(classes, " ")
}

// span is the widest row in cells, used for full-width title and empty rows.
func span(grid model.Grid) int {
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

func rootAttrs(attrs []render.Attribute) string {
	var b strings.Builder
	for _, attr := range attrs {
		b.WriteByte(' ')
		b.WriteString(stdhtml.EscapeString(attr.Name))
		b.WriteString(`="`)
		b.WriteString(stdhtml.EscapeString(attr.Value))
		b.WriteByte('"')
	}
	return b.String()
}

func stylesheets(doc render.Document, options render.RenderOptions) []string {
	out := append([]string{}, options.Stylesheets...)
	if doc.Theme != nil && doc.Theme.Stylesheet != "" {
		out = append(out, doc.Theme.Stylesheet)
	}
	return out
}

func langOf(locale string) string {
	if locale == "" {
		return "en"
	}
	lang, _, _ := strings.Cut(locale, "_")
	return lang
}

func titleOf(doc render.Document) string {
	switch {
	case doc.Grid.Caption != "":
		return doc.Grid.Caption
	case doc.TableType != "":
		return doc.TableType
	default:
		return "Table"
	}
}
