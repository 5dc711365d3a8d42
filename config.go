package console

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config holds console settings loadable from a YAML or TOML file.
type Config struct {
	// Prompt is printed before each read.
	Prompt string `yaml:"prompt" toml:"prompt"`
	// ExternalMarker prefixes stages that run external programs. Empty
	// disables external stages.
	ExternalMarker *string `yaml:"external_marker" toml:"external_marker"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`
	// LogFormat is text or json.
	LogFormat string `yaml:"log_format" toml:"log_format"`
	// Interactive is auto, always or never.
	Interactive string `yaml:"interactive" toml:"interactive"`
	// Builtins registers the help and exit commands. Defaults to true.
	Builtins *bool `yaml:"builtins" toml:"builtins"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	marker := DefaultExternalMarker
	builtins := true
	return &Config{
		Prompt:         "> ",
		ExternalMarker: &marker,
		LogLevel:       "warn",
		LogFormat:      "text",
		Interactive:    "auto",
		Builtins:       &builtins,
	}
}

// LoadConfig reads path over the defaults. The format follows the file
// extension: .yaml/.yml or .toml.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	switch c.Interactive {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("unknown interactive mode %q", c.Interactive))
	}
	if c.ExternalMarker != nil && strings.ContainsAny(*c.ExternalMarker, " \t|'\"") {
		errs = append(errs, fmt.Errorf("external marker %q must not contain whitespace, quotes or pipes", *c.ExternalMarker))
	}
	return errors.Join(errs...)
}

// Options converts the configuration into console options.
func (c *Config) Options() []Option {
	var opts []Option
	if c.Prompt != "" {
		opts = append(opts, WithPrompt(c.Prompt))
	}
	if c.ExternalMarker != nil {
		opts = append(opts, WithExternalMarker(*c.ExternalMarker))
	}
	if c.Builtins != nil && !*c.Builtins {
		opts = append(opts, WithoutBuiltins())
	}
	return opts
}
