// Package config holds the build manifest that drives glugen.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/xopoww/glugen/fsx"
	"github.com/xopoww/glugen/inject"
)

// DefaultPath is the manifest looked up in the working directory.
const DefaultPath = "glugen.yaml"

var ErrInvalidConfig = errors.New("invalid config")

// Config is the root build manifest.
type Config struct {
	// Root is the directory relative paths are resolved against.
	// Set to the manifest's directory by Load.
	Root string `yaml:"-" toml:"-"`

	Flatten FlattenConfig `yaml:"flatten" toml:"flatten"`
	Inject  InjectConfig  `yaml:"inject" toml:"inject"`
}

// FlattenConfig lists standalone headers to generate.
type FlattenConfig struct {
	InputDir    string   `yaml:"input_dir" toml:"input_dir"`
	OutputDir   string   `yaml:"output_dir" toml:"output_dir"`
	Headers     []string `yaml:"headers" toml:"headers"`
	AllowIndent bool     `yaml:"allow_indent" toml:"allow_indent"`
}

// InjectConfig configures shader injection jobs.
type InjectConfig struct {
	ShaderDir          string `yaml:"shader_dir" toml:"shader_dir"`
	LoadToken          string `yaml:"load_token" toml:"load_token"`
	LoadFunc           string `yaml:"load_func" toml:"load_func"`
	MarkerToken        string `yaml:"marker_token" toml:"marker_token"`
	SymbolPrefix       string `yaml:"symbol_prefix" toml:"symbol_prefix"`
	DefinitionTemplate string `yaml:"definition_template" toml:"definition_template"`

	Jobs []InjectJob `yaml:"jobs" toml:"jobs"`
}

type InjectJob struct {
	Input  string `yaml:"input" toml:"input"`
	Output string `yaml:"output" toml:"output"`
}

// Default returns the manifest of the glu distribution build.
func Default() *Config {
	return &Config{
		Root: ".",
		Flatten: FlattenConfig{
			InputDir:  "glu",
			OutputDir: "dist",
			Headers:   []string{"BlellochScan.hpp", "RadixSort.hpp", "Reduce.hpp"},
		},
		Inject: InjectConfig{
			LoadToken:    inject.DefaultLoadToken,
			LoadFunc:     inject.DefaultLoadFunc,
			MarkerToken:  inject.DefaultMarkerToken,
			SymbolPrefix: inject.DefaultSymbolPrefix,
		},
	}
}

// Load reads a YAML or TOML manifest (chosen by extension) over the defaults
// and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Root = filepath.Dir(path)
	cfg.applyEnvOverrides()

	return cfg, nil
}

// LoadOrDefault loads path if it exists and returns the defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		cfg.applyEnvOverrides()
		return cfg, nil
	}
	return Load(path)
}

// Save writes the manifest as YAML or TOML depending on the extension.
func (c *Config) Save(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		data, err = toml.Marshal(c)
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := fsx.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("GLUGEN_OUTPUT_DIR"); dir != "" {
		c.Flatten.OutputDir = dir
	}
	if dir := os.Getenv("GLUGEN_SHADER_DIR"); dir != "" {
		c.Inject.ShaderDir = dir
	}
}

// Validate reports the first problem found in the manifest.
func (c *Config) Validate() error {
	if len(c.Flatten.Headers) > 0 && c.Flatten.OutputDir == "" {
		return fmt.Errorf("%w: flatten.output_dir is required", ErrInvalidConfig)
	}
	for i, h := range c.Flatten.Headers {
		if h == "" {
			return fmt.Errorf("%w: flatten.headers[%d] is empty", ErrInvalidConfig, i)
		}
	}

	tokens := []struct{ name, value string }{
		{"load_token", c.Inject.LoadToken},
		{"load_func", c.Inject.LoadFunc},
		{"marker_token", c.Inject.MarkerToken},
		{"symbol_prefix", c.Inject.SymbolPrefix},
	}
	for _, tok := range tokens {
		if strings.TrimSpace(tok.value) == "" {
			return fmt.Errorf("%w: inject.%s is empty", ErrInvalidConfig, tok.name)
		}
	}
	if strings.Contains(c.Inject.LoadFunc, c.Inject.LoadToken) {
		return fmt.Errorf("%w: inject.load_func must not contain inject.load_token", ErrInvalidConfig)
	}

	for i, job := range c.Inject.Jobs {
		if job.Input == "" || job.Output == "" {
			return fmt.Errorf("%w: inject.jobs[%d] needs input and output", ErrInvalidConfig, i)
		}
	}
	return nil
}

// Path resolves p against Root unless it is absolute.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Root, p)
}

// InjectOptions converts the inject section to injector options.
// DefinitionTemplate names a template file relative to Root.
func (c *Config) InjectOptions() (inject.Options, error) {
	opts := inject.Options{
		LoadToken:    c.Inject.LoadToken,
		LoadFunc:     c.Inject.LoadFunc,
		MarkerToken:  c.Inject.MarkerToken,
		SymbolPrefix: c.Inject.SymbolPrefix,
		ShaderDir:    c.Path(c.Inject.ShaderDir),
	}
	if c.Inject.DefinitionTemplate != "" {
		data, err := os.ReadFile(c.Path(c.Inject.DefinitionTemplate))
		if err != nil {
			return inject.Options{}, fmt.Errorf("failed to read definition template: %w", err)
		}
		opts.DefinitionTemplate = string(data)
	}
	return opts, nil
}
