package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration from path, which may be empty, and the
// process environment.
func Load(path string) (*Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (*Config, error) {
	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	if path != "" {
		file, err := readFile(path)
		if err != nil {
			return nil, err
		}
		merged = deepMerge(merged, file)
	}
	merged = deepMerge(merged, envLayer(EnvPrefix, environ))

	cfg := &Config{}
	if err := decode(merged, cfg); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a single TOML or YAML document on top of the defaults.
// Format is "toml" or "yaml".
func Parse(data []byte, format string) (*Config, error) {
	layer, err := parseLayer("<input>", data, format)
	if err != nil {
		return nil, err
	}
	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := decode(deepMerge(merged, layer), cfg); err != nil {
		return nil, &ParseError{Path: "<input>", Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return parseLayer(path, data, format)
}

func parseLayer(source string, data []byte, format string) (map[string]any, error) {
	out := make(map[string]any)
	switch format {
	case "toml":
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, &ParseError{Path: source, Err: err}
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, &ParseError{Path: source, Err: err}
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return out, nil
}

// toMap flattens a Config into the generic map form used for merging.
func toMap(cfg *Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	out := make(map[string]any)
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func decode(m map[string]any, cfg *Config) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Get returns the merged value at a dotted path, for diagnostics.
func (c *Config) Get(path string) (any, bool) {
	m, err := toMap(c)
	if err != nil {
		return nil, false
	}
	return getPath(m, path)
}
