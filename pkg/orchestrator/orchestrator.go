package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-tablegen/pkg/columns"
	"github.com/goliatone/go-tablegen/pkg/failsafe"
	"github.com/goliatone/go-tablegen/pkg/format"
	"github.com/goliatone/go-tablegen/pkg/layout"
	"github.com/goliatone/go-tablegen/pkg/metrics"
	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/performance"
	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/renderers/html"
	jsonrenderer "github.com/goliatone/go-tablegen/pkg/renderers/json"
	"github.com/goliatone/go-tablegen/pkg/renderers/text"
	"github.com/goliatone/go-tablegen/pkg/resolver"
	"github.com/goliatone/go-tablegen/pkg/tabletype"
)

const defaultRendererName = html.Name

// DefaultCacheSize bounds the resolve cache of the default resolver.
const DefaultCacheSize = 256

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithResolver injects a configured resolver, e.g. one backed by a custom
// preset store.
func WithResolver(r *resolver.Resolver) Option {
	return func(o *Orchestrator) {
		o.resolver = r
	}
}

// WithRegistry injects an output renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithLayouts injects a layout registry, e.g. one with a replaced renderer.
func WithLayouts(layouts *layout.Registry) Option {
	return func(o *Orchestrator) {
		o.layouts = layouts
	}
}

// WithColumnComputer replaces the default column computer.
func WithColumnComputer(c *columns.Computer) Option {
	return func(o *Orchestrator) {
		o.columns = c
	}
}

// WithErrorHandler replaces the default failsafe handler. The handler's own
// logger and metrics are used as configured.
func WithErrorHandler(h *failsafe.Handler) Option {
	return func(o *Orchestrator) {
		o.handler = h
	}
}

// WithLogger sets the base logger for every stage built by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = func(context.Context) *slog.Logger { return logger }
			o.baseLogger = logger
		}
	}
}

// WithContextLogger derives the per-request logger from the context.
func WithContextLogger(fn func(context.Context) *slog.Logger) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.logger = fn
		}
	}
}

// WithMetrics reports strategy selection, fallbacks, validation failures,
// cache lookups and render timings.
func WithMetrics(recorder metrics.Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = metrics.OrNop(recorder)
	}
}

// WithThemeSelector resolves styling.theme/variant into CSS variables and
// a stylesheet for renderers.
func WithThemeSelector(selector theme.ThemeSelector) Option {
	return func(o *Orchestrator) {
		o.themes = selector
	}
}

// WithIDGenerator replaces the UUID generator used for table ids.
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}

// WithShowDetails exposes validation details in error payloads built by the
// default handler.
func WithShowDetails(show bool) Option {
	return func(o *Orchestrator) {
		o.showDetails = show
	}
}

// Orchestrator runs resolve → columns → strategy → layout → output for one
// request at a time. It holds no per-request state and is safe for
// concurrent use once constructed.
type Orchestrator struct {
	resolver        *resolver.Resolver
	columns         *columns.Computer
	layouts         *layout.Registry
	registry        *render.Registry
	handler         *failsafe.Handler
	themes          theme.ThemeSelector
	recorder        metrics.Recorder
	logger          func(context.Context) *slog.Logger
	baseLogger      *slog.Logger
	newID           func() string
	defaultRenderer string
	showDetails     bool
	initialiseErr   error
}

// New constructs an Orchestrator. Missing dependencies are built from the
// embedded presets and the built-in renderers.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
		recorder:        metrics.Nop{},
		newID:           uuid.NewString,
	}
	for _, opt := range options {
		if opt != nil {
			opt(o)
		}
	}
	o.applyDefaults()
	return o
}

// Request describes one table render.
type Request struct {
	// TableType names a preset. Unknown or empty ids start from the global
	// default configuration.
	TableType string
	// Config is an untyped caller configuration, e.g. decoded from a request
	// body. It takes precedence over Overrides.
	Config map[string]any
	// Overrides is the typed alternative to Config.
	Overrides *resolver.Overrides
	Data      []model.Record
	// Section restricts static columns to those assigned to the section.
	Section string
	// TableID is the root element id; a UUID is generated when empty.
	TableID string
	// FallbackOnError renders a failing configuration as an error panel above
	// the fallback table instead of continuing with the coerced config.
	FallbackOnError bool
	Renderer        string
	ThemeName       string
	ThemeVariant    string
	RenderOptions   render.RenderOptions
}

// Result is the rendered output plus what the client runtime and callers
// need to know about it.
type Result struct {
	Output       []byte
	ContentType  string
	TableID      string
	Attributes   map[string]string
	Strategy     model.Strategy
	Validation   model.ValidationResult
	ErrorPayload *failsafe.Payload
	Fallback     bool
	Document     render.Document
}

// Generate renders req. Errors are returned only for caller mistakes (nil
// context, unknown renderer) or a failing output renderer; configuration
// and data problems always produce output.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (Result, error) {
	if ctx == nil {
		return Result{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := o.initialiseErr; err != nil {
		return Result{}, err
	}
	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return Result{}, err
	}

	doc, payload := o.build(ctx, req)

	output, err := renderer.Render(ctx, doc, req.RenderOptions)
	if err != nil {
		return Result{}, fmt.Errorf("orchestrator: render output: %w", err)
	}

	result := Result{
		Output:      output,
		ContentType: renderer.ContentType(),
		TableID:     doc.TableID,
		Attributes:  doc.AttributeMap(),
		Strategy:    doc.Optimization.Strategy,
		Validation:  doc.Validation,
		Fallback:    doc.Fallback,
		Document:    doc,

		ErrorPayload: payload,
	}
	return result, nil
}

// build runs every stage up to the output renderer. It never fails:
// validation failures and layout errors degrade to the fallback grid. The
// payload is set when the configuration failed validation.
func (o *Orchestrator) build(ctx context.Context, req Request) (render.Document, *failsafe.Payload) {
	start := time.Now()
	tableID := req.TableID
	if tableID == "" {
		tableID = o.newID()
	}
	logger := o.logger(ctx).With("table_id", tableID, "table_type", req.TableType)

	cfg, validation := o.resolve(req)
	doc := render.Document{
		TableID:    tableID,
		TableType:  req.TableType,
		Layout:     cfg.Layout.Type,
		Styling:    cfg.Styling,
		Settings:   cfg.Settings,
		Validation: validation,
		Theme:      o.themeFor(ctx, req, cfg),
	}
	scope := failsafe.Scope{
		TableType:  req.TableType,
		LayoutType: cfg.Layout.Type,
		DataCount:  len(req.Data),
	}

	var payload *failsafe.Payload
	if !validation.Valid {
		p := o.handler.Validation(ctx, req.TableType, validation)
		payload = &p
	} else if len(validation.Warnings) > 0 {
		logger.Debug("table config coerced", "warnings", validation.Warnings)
	}

	if payload != nil && req.FallbackOnError {
		doc.Error = payload
		doc.Fallback = true
		doc.Grid = o.handler.Fallback(scope, req.Data, cfg.UnsetLabel())
		doc.Grid.Meta["error_id"] = payload.ErrorID
		doc.Optimization = performance.Describe(model.StrategyFullRender, len(req.Data))
		o.recorder.RenderDuration(cfg.Layout.Type, time.Since(start))
		return doc, payload
	}

	opts := columns.OptionsFor(cfg)
	opts.Section = req.Section
	cols := o.columns.Compute(cfg.Columns, req.Data, opts)
	scope.ColumnsCount = len(cols)

	partition := performance.PlanFull(req.Data)
	if cfg.Features.Performance {
		partition = performance.Plan(req.Data)
	}
	o.recorder.StrategySelected(partition.Descriptor.Strategy)

	formatter := format.ForConfig(cfg)
	renderer := o.layouts.For(cfg.Layout.Type)
	renderRows := func(rows []model.Record) failsafe.Outcome {
		return o.handler.Render(ctx, scope, req.Data, cfg.UnsetLabel(), func(ctx context.Context) (model.Grid, error) {
			return renderer.Render(ctx, layout.Input{
				Columns:   cols,
				Rows:      rows,
				Config:    cfg,
				Formatter: formatter,
			})
		})
	}
	outcome := renderRows(partition.Visible)

	if !outcome.Fallback {
		doc.Batches = performance.BatchPayload(partition, cols, formatter.BatchCell)
		if _, err := doc.BatchesJSON(); err != nil {
			logger.Warn("batch payload cannot be encoded, rendering every row",
				"strategy", string(partition.Descriptor.Strategy),
				"data_count", len(req.Data),
				"error", err,
			)
			doc.Batches = nil
			partition = performance.PlanFull(req.Data)
			outcome = renderRows(partition.Visible)
		}
	}

	doc.Grid = outcome.Grid
	doc.Fallback = outcome.Fallback
	if outcome.Fallback {
		doc.Batches = nil
		doc.Optimization = performance.Describe(model.StrategyFullRender, len(req.Data))
	} else {
		doc.Optimization = partition.Descriptor
	}

	elapsed := time.Since(start)
	o.recorder.RenderDuration(cfg.Layout.Type, elapsed)
	logger.Debug("table rendered",
		"layout_type", string(cfg.Layout.Type),
		"strategy", string(doc.Optimization.Strategy),
		"data_count", len(req.Data),
		"columns_count", len(cols),
		"fallback", doc.Fallback,
		"elapsed", elapsed,
	)
	return doc, payload
}

func (o *Orchestrator) resolve(req Request) (model.TableConfig, model.ValidationResult) {
	shape := resolver.ShapeOf(req.Data)
	if req.Config != nil {
		return o.resolver.ResolveRaw(req.TableType, req.Config, shape)
	}
	var overrides resolver.Overrides
	if req.Overrides != nil {
		overrides = *req.Overrides
	}
	return o.resolver.ResolveShape(req.TableType, overrides, shape)
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := name
	if target == "" {
		target = o.defaultRenderer
	}
	renderer, err := o.registry.Get(target)
	if err == nil {
		return renderer, nil
	}
	if name != "" {
		return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
	}

	names := o.registry.List()
	if len(names) == 0 {
		return nil, errors.New("orchestrator: no renderers registered")
	}
	return o.registry.Get(names[0])
}

func (o *Orchestrator) applyDefaults() {
	if o.logger == nil {
		o.logger = func(context.Context) *slog.Logger { return slog.Default() }
	}
	base := o.baseLogger
	if base == nil {
		base = slog.Default()
	}

	if o.resolver == nil {
		store, err := tabletype.Default()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: load presets: %w", err)
			return
		}
		r, err := resolver.New(
			resolver.WithStore(store),
			resolver.WithLogger(base),
			resolver.WithMetrics(o.recorder),
			resolver.WithCache(DefaultCacheSize),
		)
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: build resolver: %w", err)
			return
		}
		o.resolver = r
	}
	if o.columns == nil {
		o.columns = columns.New(columns.WithLogger(base))
	}
	if o.layouts == nil {
		o.layouts = layout.NewRegistry()
	}
	if o.handler == nil {
		o.handler = failsafe.NewHandler(
			failsafe.WithContextLogger(o.logger),
			failsafe.WithMetrics(o.recorder),
			failsafe.WithShowDetails(o.showDetails),
		)
	}
	if o.registry == nil {
		htmlRenderer, err := html.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: default renderer: %w", err)
			return
		}
		o.registry = render.NewRegistry(htmlRenderer, text.New(), jsonrenderer.New())
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
