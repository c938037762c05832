package config

import (
	"fmt"
	"os"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

type manifestFile struct {
	Name      string                 `yaml:"name"`
	Version   string                 `yaml:"version"`
	Tokens    map[string]string      `yaml:"tokens"`
	Templates map[string]string      `yaml:"templates"`
	Assets    assetsFile             `yaml:"assets"`
	Variants  map[string]variantFile `yaml:"variants"`
}

type variantFile struct {
	Tokens    map[string]string `yaml:"tokens"`
	Templates map[string]string `yaml:"templates"`
	Assets    assetsFile        `yaml:"assets"`
}

type assetsFile struct {
	Prefix string            `yaml:"prefix"`
	Files  map[string]string `yaml:"files"`
}

func (a assetsFile) toTheme() theme.Assets {
	return theme.Assets{Prefix: a.Prefix, Files: a.Files}
}

// LoadManifests reads the configured YAML theme manifests.
func (c ThemesConfig) LoadManifests() ([]*theme.Manifest, error) {
	manifests := make([]*theme.Manifest, 0, len(c.Manifests))
	for _, path := range c.Manifests {
		manifest, err := LoadManifest(path)
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, manifest)
	}
	return manifests, nil
}

// LoadManifest decodes one YAML theme manifest.
func LoadManifest(path string) (*theme.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read theme manifest: %w", err)
	}
	var file manifestFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("config: parse theme manifest %s: %w", path, err)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("config: theme manifest %s: name is required", path)
	}

	manifest := &theme.Manifest{
		Name:      file.Name,
		Version:   file.Version,
		Tokens:    file.Tokens,
		Templates: file.Templates,
		Assets:    file.Assets.toTheme(),
	}
	if len(file.Variants) > 0 {
		manifest.Variants = make(map[string]theme.Variant, len(file.Variants))
		for name, variant := range file.Variants {
			manifest.Variants[name] = theme.Variant{
				Tokens:    variant.Tokens,
				Templates: variant.Templates,
				Assets:    variant.Assets.toTheme(),
			}
		}
	}
	return manifest, nil
}
