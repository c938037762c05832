package config

import (
	"encoding"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Default returns the configuration with every default tag applied.
func Default() *Config {
	cfg := &Config{}
	if err := walk(reflect.ValueOf(cfg).Elem(), func(field reflect.StructField, value reflect.Value) error {
		if def, ok := field.Tag.Lookup("default"); ok {
			return setField(value, def)
		}
		return nil
	}); err != nil {
		panic(fmt.Sprintf("config: invalid default tag: %v", err))
	}
	return cfg
}

// Load reads path (optional) over the defaults, applies environment
// overrides and validates the result. Unknown TOML keys are an error.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, key := range undecoded {
				keys = append(keys, key.String())
			}
			sort.Strings(keys)
			return nil, fmt.Errorf("config load: unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	err := walk(reflect.ValueOf(cfg).Elem(), func(field reflect.StructField, value reflect.Value) error {
		name := field.Tag.Get("env")
		if name == "" {
			return nil
		}
		raw, ok := lookup(EnvPrefix + name)
		if !ok || raw == "" {
			return nil
		}
		if err := setField(value, raw); err != nil {
			return fmt.Errorf("invalid value for %s%s=%q: %w", EnvPrefix, name, raw, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

var textUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// walk visits every leaf field. Structs implementing TextUnmarshaler are
// leaves.
func walk(v reflect.Value, visit func(reflect.StructField, reflect.Value) error) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := v.Field(i)
		if !value.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct && !reflect.PointerTo(field.Type).Implements(textUnmarshaler) {
			if err := walk(value, visit); err != nil {
				return err
			}
			continue
		}
		if err := visit(field, value); err != nil {
			return err
		}
	}
	return nil
}

func setField(field reflect.Value, value string) error {
	if field.CanAddr() {
		if u, ok := field.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(value))
		}
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		field.Set(reflect.ValueOf(out))
	case reflect.Map:
		if field.Type().Key().Kind() != reflect.String || field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported map type: %s", field.Type())
		}
		if field.IsNil() {
			field.Set(reflect.MakeMap(field.Type()))
		}
		for _, pair := range strings.Split(value, ",") {
			if pair = strings.TrimSpace(pair); pair == "" {
				continue
			}
			k, v, ok := strings.Cut(pair, "=")
			if !ok || strings.TrimSpace(k) == "" {
				return fmt.Errorf("invalid map entry %q, want key=value", pair)
			}
			field.SetMapIndex(reflect.ValueOf(strings.TrimSpace(k)), reflect.ValueOf(strings.TrimSpace(v)))
		}
	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}
	return nil
}
