// Package config loads the shadegraph configuration file.
//
// The file is YAML. Every field can be overridden by an environment variable
// named after its path, so SHADEGRAPH_EVAL_MAX_DEPTH sets eval.max_depth.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"src.shadegraph.dev/pkg/logutil"
)

var logger = logutil.GetLogger("config")

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "SHADEGRAPH_"

// Config is the configuration of the command-line tool.
type Config struct {
	Log     Log     `mapstructure:"log"`
	Store   Store   `mapstructure:"store"`
	Compile Compile `mapstructure:"compile"`
	Eval    Eval    `mapstructure:"eval"`
	// Color is one of auto, always and never.
	Color   string  `mapstructure:"color"`
	Catalog Catalog `mapstructure:"catalog"`
	Batch   Batch   `mapstructure:"batch"`
}

type Log struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

type Store struct {
	Path string `mapstructure:"path"`
}

type Compile struct {
	// Blocks are the code blocks of a program, in output order.
	Blocks []string `mapstructure:"blocks"`
	// Current is the block nodes compile into unless they push their own.
	Current string `mapstructure:"current"`
}

type Eval struct {
	MaxDepth int `mapstructure:"max_depth"`
}

type Catalog struct {
	// Format is ascii or markdown.
	Format string `mapstructure:"format"`
}

type Batch struct {
	// Jobs limits concurrent documents; 0 means one per CPU.
	Jobs int `mapstructure:"jobs"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Log:     Log{Level: "warn"},
		Compile: Compile{Blocks: []string{"imports", "bindings", "fragment"}, Current: "fragment"},
		Eval:    Eval{MaxDepth: 10000},
		Color:   "auto",
		Catalog: Catalog{Format: "ascii"},
	}
}

// Path returns the configuration file to use: explicit if not empty, then
// $SHADEGRAPH_CONFIG, then config.yaml in the shadegraph directory of
// $XDG_CONFIG_HOME or ~/.config.
func Path(explicit string, getenv func(string) string) string {
	if explicit != "" {
		return explicit
	}
	if p := getenv(EnvPrefix + "CONFIG"); p != "" {
		return p
	}
	dir := getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "shadegraph", "config.yaml")
}

// Load reads the configuration file at path, applies overrides from environ,
// a list of KEY=value strings, and validates the result. A missing file is
// not an error unless required is set.
func Load(fs afero.Fs, path string, required bool, environ []string) (*Config, error) {
	raw := map[string]any{}
	if path != "" {
		data, err := afero.ReadFile(fs, path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &raw); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			logger.Printf("[DEBUG] read config %s", path)
		case errors.Is(err, os.ErrNotExist) && !required:
			logger.Printf("[DEBUG] no config at %s", path)
		default:
			return nil, err
		}
	}
	if raw == nil {
		// An empty file.
		raw = map[string]any{}
	}
	applyEnv(raw, environ)

	cfg := Default()
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var sections = []string{"log", "store", "compile", "eval", "catalog", "batch"}

// applyEnv sets raw entries from SHADEGRAPH_* variables. The first word after
// the prefix selects a section when it names one.
func applyEnv(raw map[string]any, environ []string) {
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
		if key == "config" {
			continue
		}
		section, field, nested := strings.Cut(key, "_")
		if !nested || !slices.Contains(sections, section) {
			raw[key] = v
			continue
		}
		m, ok := raw[section].(map[string]any)
		if !ok {
			m = map[string]any{}
			raw[section] = m
		}
		m[field] = v
		logger.Printf("[DEBUG] %s overrides %s.%s", k, section, field)
	}
}

// Validate checks field values, returning every problem found.
func (c *Config) Validate() error {
	var result *multierror.Error
	bad := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}
	if !slices.Contains([]string{"auto", "always", "never"}, c.Color) {
		bad("color must be auto, always or never, got %q", c.Color)
	}
	if !slices.Contains([]string{"ascii", "markdown"}, c.Catalog.Format) {
		bad("catalog.format must be ascii or markdown, got %q", c.Catalog.Format)
	}
	if c.Eval.MaxDepth < 0 {
		bad("eval.max_depth must not be negative")
	}
	if c.Batch.Jobs < 0 {
		bad("batch.jobs must not be negative")
	}
	if len(c.Compile.Blocks) == 0 {
		bad("compile.blocks must not be empty")
	} else if !slices.Contains(c.Compile.Blocks, c.Compile.Current) {
		bad("compile.current %q is not one of compile.blocks", c.Compile.Current)
	}
	return result.ErrorOrNil()
}
