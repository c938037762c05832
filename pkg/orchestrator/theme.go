package orchestrator

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-tablegen/pkg/model"
	"github.com/goliatone/go-tablegen/pkg/render"
)

// StylesheetAsset is the manifest asset key holding the table stylesheet.
const StylesheetAsset = "tablegen.stylesheet"

// themeFor resolves the request theme, falling back to the configuration's
// styling block. Selection failures are logged and the table renders
// without a theme.
func (o *Orchestrator) themeFor(ctx context.Context, req Request, cfg model.TableConfig) *render.Theme {
	if o.themes == nil {
		return nil
	}
	name := firstNonEmpty(req.ThemeName, cfg.Styling.Theme)
	variant := firstNonEmpty(req.ThemeVariant, cfg.Styling.Variant)

	selection, err := o.themes.Select(name, variant)
	if err != nil {
		o.logger(ctx).Warn("theme selection failed", "theme", name, "variant", variant, "error", err)
		return nil
	}
	return themeFromSelection(selection)
}

func themeFromSelection(selection *theme.Selection) *render.Theme {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := make(map[string]string, len(manifest.Tokens))
	for k, v := range manifest.Tokens {
		tokens[k] = v
	}
	prefix := manifest.Assets.Prefix
	stylesheet := manifest.Assets.Files[StylesheetAsset]

	if variant, ok := manifest.Variants[selection.Variant]; ok {
		for k, v := range variant.Tokens {
			tokens[k] = v
		}
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
		if file := variant.Assets.Files[StylesheetAsset]; file != "" {
			stylesheet = file
		}
	}

	vars := make(map[string]string, len(tokens))
	for k, v := range tokens {
		vars["--"+k] = v
	}

	name := selection.Theme
	if name == "" {
		name = manifest.Name
	}
	return &render.Theme{
		Name:       name,
		Variant:    selection.Variant,
		Tokens:     tokens,
		CSSVars:    vars,
		Stylesheet: assetURL(prefix, stylesheet),
	}
}

func assetURL(prefix, file string) string {
	switch {
	case file == "":
		return ""
	case prefix == "", strings.Contains(file, "://"), strings.HasPrefix(file, "/"):
		return file
	default:
		return path.Join(prefix, file)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// StaticThemes is a theme.ThemeSelector over a fixed set of manifests,
// typically loaded from configuration at startup.
type StaticThemes struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*StaticThemes)(nil)

// NewStaticThemes validates each manifest through a go-theme registry and
// indexes it by name.
func NewStaticThemes(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*StaticThemes, error) {
	registry := theme.NewRegistry()
	s := &StaticThemes{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("orchestrator: register theme %q: %w", manifest.Name, err)
		}
		s.manifests[manifest.Name] = manifest
	}
	if defaultTheme != "" {
		if _, ok := s.manifests[defaultTheme]; !ok {
			return nil, fmt.Errorf("orchestrator: default theme %q is not registered", defaultTheme)
		}
	}
	return s, nil
}

// Select returns the named theme, or the default one when name is empty.
// An unknown variant is an error; an empty variant selects the default
// variant when the manifest defines it.
func (s *StaticThemes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name == "" {
		name = s.defaultTheme
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("orchestrator: theme %q not found", name)
	}
	if variant == "" {
		if _, ok := manifest.Variants[s.defaultVariant]; ok {
			variant = s.defaultVariant
		}
	} else if _, ok := manifest.Variants[variant]; !ok {
		return nil, fmt.Errorf("orchestrator: theme %q has no variant %q", name, variant)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Names lists the registered themes in order.
func (s *StaticThemes) Names() []string {
	names := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
