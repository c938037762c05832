package gotemplate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"reflect"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-tablegen/pkg/render/template"
)

// DefaultExtension is appended to template names that carry no extension.
const DefaultExtension = ".tmpl"

// Option configures the engine before construction.
type Option func(*config)

type config struct {
	baseDir   string
	templates fs.FS
	extension string
	functions map[string]any
	filters   map[string]func(input any, param any) (any, error)
	global    map[string]any
}

// WithBaseDir loads templates from a directory on disk. Disk templates win
// over an fs.FS supplied through WithFS.
func WithBaseDir(dir string) Option {
	return func(cfg *config) {
		cfg.baseDir = strings.TrimSpace(dir)
	}
}

// WithFS loads templates from files.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templates = files
	}
}

// WithExtension overrides DefaultExtension.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.extension = ext
	}
}

// WithFunctions exposes Go functions as template globals.
func WithFunctions(funcs map[string]any) Option {
	return func(cfg *config) {
		for name, fn := range funcs {
			name = strings.TrimSpace(name)
			if name == "" || !isFunc(fn) {
				continue
			}
			if cfg.functions == nil {
				cfg.functions = make(map[string]any, len(funcs))
			}
			cfg.functions[name] = fn
		}
	}
}

// WithFilters registers filters at construction time. Filters are global in
// pongo2, so a name that already exists is left untouched.
func WithFilters(filters map[string]func(input any, param any) (any, error)) Option {
	return func(cfg *config) {
		for name, fn := range filters {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			if cfg.filters == nil {
				cfg.filters = make(map[string]func(any, any) (any, error), len(filters))
			}
			cfg.filters[name] = fn
		}
	}
}

// WithGlobalData seeds values visible to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		for key, value := range data {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if cfg.global == nil {
				cfg.global = make(map[string]any, len(data))
			}
			cfg.global[key] = value
		}
	}
}

// Engine is a pongo2 template set that satisfies template.TemplateRenderer.
// Parsed templates are cached by path.
type Engine struct {
	mu sync.RWMutex

	set       *pongo2.TemplateSet
	compiled  map[string]*pongo2.Template
	extension string
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New builds an Engine. At least one of WithBaseDir or WithFS is required.
func New(options ...Option) (*Engine, error) {
	cfg := &config{extension: DefaultExtension}
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	if cfg.baseDir == "" && cfg.templates == nil {
		return nil, errors.New("gotemplate: a base dir or fs.FS is required")
	}

	var loaders []pongo2.TemplateLoader
	if cfg.baseDir != "" {
		loader, err := pongo2.NewLocalFileSystemLoader(cfg.baseDir)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: create local loader: %w", err)
		}
		loaders = append(loaders, loader)
	}
	if cfg.templates != nil {
		loaders = append(loaders, pongo2.NewFSLoader(cfg.templates))
	}

	engine := &Engine{
		set:       pongo2.NewSet("tablegen", loaders...),
		compiled:  make(map[string]*pongo2.Template),
		extension: cfg.extension,
	}
	registerBuiltinFilters()

	for name, fn := range cfg.filters {
		if pongo2.FilterExists(name) {
			continue
		}
		if err := engine.RegisterFilter(name, fn); err != nil {
			return nil, fmt.Errorf("gotemplate: register filter %q: %w", name, err)
		}
	}
	if err := engine.GlobalContext(cfg.global); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	if len(cfg.functions) > 0 {
		engine.mu.Lock()
		globals := engine.globals()
		for name, fn := range cfg.functions {
			globals[name] = fn
		}
		engine.mu.Unlock()
	}

	return engine, nil
}

// Render treats name as inline template content when it contains template
// tags, otherwise as a template path.
func (e *Engine) Render(name string, data any, out ...io.Writer) (string, error) {
	if strings.Contains(name, "{{") || strings.Contains(name, "{%") {
		return e.RenderString(name, data, out...)
	}
	return e.RenderTemplate(name, data, out...)
}

// RenderTemplate executes the template at name, adding the configured
// extension when it is missing.
func (e *Engine) RenderTemplate(name string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	path := name
	if !strings.HasSuffix(path, e.extension) {
		path += e.extension
	}
	tmpl, err := e.lookup(path)
	if err != nil {
		return "", err
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template %q: %w", path, err)
	}
	return rendered, writeAll(rendered, out)
}

// RenderString parses and executes templateContent without caching it.
func (e *Engine) RenderString(templateContent string, data any, out ...io.Writer) (string, error) {
	if e == nil || e.set == nil {
		return "", errors.New("gotemplate: engine is nil")
	}
	tmpl, err := e.set.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}
	rendered, err := e.execute(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	return rendered, writeAll(rendered, out)
}

// RegisterFilter adapts fn into a pongo2 filter. Registering an existing
// name is an error.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	name = strings.TrimSpace(name)
	if name == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}
	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var arg any
		if param != nil {
			arg = param.Interface()
		}
		result, err := fn(in.Interface(), arg)
		if err != nil {
			return nil, &pongo2.Error{Sender: "filter:" + name, OrigError: err}
		}
		return pongo2.AsValue(result), nil
	})
}

// GlobalContext merges data into the globals shared by every template.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.set == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}
	values, err := toContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.globals().Update(values)
	return nil
}

func (e *Engine) globals() pongo2.Context {
	if e.set.Globals == nil {
		e.set.Globals = make(pongo2.Context)
	}
	return e.set.Globals
}

func (e *Engine) execute(tmpl *pongo2.Template, data any) (string, error) {
	values, err := toContext(data)
	if err != nil {
		return "", fmt.Errorf("convert data: %w", err)
	}
	var buf bytes.Buffer
	e.mu.RLock()
	err = tmpl.ExecuteWriter(values, &buf)
	e.mu.RUnlock()
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Engine) lookup(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.compiled[path]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.compiled[path]; ok {
		return tmpl, nil
	}
	tmpl, err := e.set.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: load template %q: %w", path, err)
	}
	e.compiled[path] = tmpl
	return tmpl, nil
}

func writeAll(rendered string, out []io.Writer) error {
	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := io.WriteString(w, rendered); err != nil {
			return fmt.Errorf("gotemplate: write output: %w", err)
		}
	}
	return nil
}

func isFunc(v any) bool {
	return v != nil && reflect.ValueOf(v).Kind() == reflect.Func
}

// toContext normalises data through its JSON form so templates address
// struct fields by their json tag. Functions pass through untouched.
func toContext(data any) (pongo2.Context, error) {
	var source map[string]any
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		source = v
	case map[string]any:
		source = v
	default:
		normalised, err := viaJSON(v)
		if err != nil {
			return nil, err
		}
		m, ok := normalised.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("gotemplate: template data must be an object, got %T", data)
		}
		source = m
	}

	out := make(pongo2.Context, len(source))
	for key, value := range source {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if isFunc(value) {
			out[key] = value
			continue
		}
		converted, err := normalise(value)
		if err != nil {
			return nil, fmt.Errorf("gotemplate: value %q: %w", key, err)
		}
		out[key] = converted
	}
	return out, nil
}

func normalise(value any) (any, error) {
	switch v := value.(type) {
	case nil, string, bool, float64, int:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			converted, err := normalise(item)
			if err != nil {
				return nil, err
			}
			out[key] = converted
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			converted, err := normalise(item)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	default:
		if isFunc(v) {
			return v, nil
		}
		return viaJSON(v)
	}
}

func viaJSON(v any) (any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func registerBuiltinFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("classes") {
		_ = pongo2.RegisterFilter("classes", filterClasses)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterClasses joins a list of class names, dropping blanks and duplicates.
// A plain string is split on whitespace first.
func filterClasses(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var parts []string
	if in.CanSlice() && !in.IsString() {
		in.Iterate(func(idx, count int, key, value *pongo2.Value) bool {
			parts = append(parts, strings.Fields(key.String())...)
			return true
		}, func() {})
	} else {
		parts = strings.Fields(in.String())
	}

	seen := make(map[string]struct{}, len(parts))
	out := parts[:0]
	for _, part := range parts {
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return pongo2.AsValue(strings.Join(out, " ")), nil
}
