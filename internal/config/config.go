// Package config loads the host configuration file.
//
// The file is YAML. Before it is decoded it is checked against the embedded
// CUE schema (schema.cue), so a malformed file is rejected before any view is
// created.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Config is the read-only ambient configuration handed to every view.
type Config struct {
	OutputDir string       `yaml:"output_dir"`
	Views     []ViewConfig `yaml:"views"`
}

// ViewConfig selects one view type and its parameters. Scalar parameter
// values are kept in their textual form.
type ViewConfig struct {
	Type   string            `yaml:"type"`
	Params map[string]string `yaml:"params"`
}

// Default returns the configuration used when no file is given: a single
// CDM view with default parameters.
func Default() *Config {
	return &Config{Views: []ViewConfig{{Type: "CDMView"}}}
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates and decodes a configuration document.
func Parse(data []byte) (*Config, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := Validate(doc); err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks a decoded YAML document against the configuration schema.
func Validate(doc any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.Encode(doc)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Resolve returns path unchanged when it is absolute or no output directory
// is configured, and joined onto the output directory otherwise.
func (c *Config) Resolve(path string) string {
	if c == nil || c.OutputDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.OutputDir, path)
}
