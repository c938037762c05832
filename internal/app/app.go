// Package app builds the orchestrator and its collaborators from process
// configuration for the tablegen commands.
package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/goliatone/go-tablegen/internal/config"
	"github.com/goliatone/go-tablegen/internal/logging"
	"github.com/goliatone/go-tablegen/pkg/metrics"
	"github.com/goliatone/go-tablegen/pkg/orchestrator"
	"github.com/goliatone/go-tablegen/pkg/render"
	"github.com/goliatone/go-tablegen/pkg/renderers/html"
	jsonrenderer "github.com/goliatone/go-tablegen/pkg/renderers/json"
	"github.com/goliatone/go-tablegen/pkg/renderers/text"
	"github.com/goliatone/go-tablegen/pkg/resolver"
	"github.com/goliatone/go-tablegen/pkg/tabletype"
)

// App holds the wired pipeline.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Store        *tabletype.Store
	Orchestrator *orchestrator.Orchestrator
	// Metrics is nil when metrics are disabled.
	Metrics *prometheus.Registry
	Themes  *orchestrator.StaticThemes
}

// New wires presets, themes, metrics and renderers from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger}

	store, err := presets(cfg.Render.PresetsDir)
	if err != nil {
		return nil, err
	}
	a.Store = store

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		a.Metrics = prometheus.NewRegistry()
		a.Metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom, err := metrics.NewPrometheus(a.Metrics, cfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("app: metrics: %w", err)
		}
		recorder = prom
	}

	policy, err := cfg.Render.SeverityPolicy()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	res, err := resolver.New(
		resolver.WithStore(store),
		resolver.WithSeverityPolicy(policy),
		resolver.WithLogger(logger),
		resolver.WithMetrics(recorder),
		resolver.WithCache(cfg.Render.CacheSize),
	)
	if err != nil {
		return nil, fmt.Errorf("app: resolver: %w", err)
	}

	htmlOpts := []html.Option{}
	if cfg.Render.TemplatesDir != "" {
		htmlOpts = append(htmlOpts, html.WithTemplatesDir(cfg.Render.TemplatesDir))
	}
	htmlRenderer, err := html.New(htmlOpts...)
	if err != nil {
		return nil, fmt.Errorf("app: html renderer: %w", err)
	}
	registry := render.NewRegistry(htmlRenderer, text.New(), jsonrenderer.New())
	if !registry.Has(cfg.Render.DefaultRenderer) {
		return nil, fmt.Errorf("app: unknown default renderer %q", cfg.Render.DefaultRenderer)
	}

	options := []orchestrator.Option{
		orchestrator.WithResolver(res),
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(cfg.Render.DefaultRenderer),
		orchestrator.WithLogger(logger),
		orchestrator.WithContextLogger(logging.WithBase(logger)),
		orchestrator.WithMetrics(recorder),
		orchestrator.WithShowDetails(cfg.Render.ShowDetails),
	}

	manifests, err := cfg.Themes.LoadManifests()
	if err != nil {
		return nil, err
	}
	if len(manifests) > 0 {
		themes, err := orchestrator.NewStaticThemes(cfg.Themes.Default, cfg.Themes.Variant, manifests...)
		if err != nil {
			return nil, fmt.Errorf("app: themes: %w", err)
		}
		a.Themes = themes
		options = append(options, orchestrator.WithThemeSelector(themes))
	}

	a.Orchestrator = orchestrator.New(options...)
	return a, nil
}

// RenderOptions returns the per-request defaults derived from the config.
func (a *App) RenderOptions() render.RenderOptions {
	prefix := a.Config.Render.RuntimePrefix
	return render.RenderOptions{
		RuntimeScript: prefix + "tablegen-loader.js",
		Stylesheets:   []string{prefix + "tablegen.css"},
	}
}

func presets(dir string) (*tabletype.Store, error) {
	base, err := tabletype.Default()
	if err != nil {
		return nil, fmt.Errorf("app: embedded presets: %w", err)
	}
	if dir == "" {
		return base, nil
	}
	extra, err := tabletype.LoadFS(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("app: presets in %s: %w", dir, err)
	}
	return tabletype.Merge(base, extra)
}
