// Package config loads CLI settings from defaults, an optional YAML file,
// DATAMODEL_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gofhir/datamodel/pkg/logger"
)

// EnvPrefix prefixes every environment variable, e.g. DATAMODEL_STRICT.
const EnvPrefix = "DATAMODEL"

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds the settings shared by every command.
type Config struct {
	LogLevel        string   `mapstructure:"log_level"`
	Strict          bool     `mapstructure:"strict"`
	Output          string   `mapstructure:"output"`
	Workers         int      `mapstructure:"workers"`
	SchemaDirs      []string `mapstructure:"schema_dirs"`
	Builtin         bool     `mapstructure:"builtin"`
	Constraints     bool     `mapstructure:"constraints"`
	MaxDepth        int      `mapstructure:"max_depth"`
	SkipConstraints []string `mapstructure:"skip_constraints"`
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"log-level":       "log_level",
	"strict":          "strict",
	"output":          "output",
	"workers":         "workers",
	"schema-dir":      "schema_dirs",
	"builtin":         "builtin",
	"constraints":     "constraints",
	"max-depth":       "max_depth",
	"skip-constraint": "skip_constraints",
}

// Load reads configuration. configFile may be empty; a missing file is an
// error only when it was named explicitly. Flags present in flags and set
// by the user override every other source.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("log_level", "warn")
	v.SetDefault("strict", false)
	v.SetDefault("output", OutputText)
	v.SetDefault("workers", 0)
	v.SetDefault("schema_dirs", []string{})
	v.SetDefault("builtin", true)
	v.SetDefault("constraints", true)
	v.SetDefault("max_depth", 64)
	v.SetDefault("skip_constraints", []string{})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	} else {
		v.SetConfigName("datamodel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("config: %w", err)
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values no command could use.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: log_level: %w", err)
	}
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("config: output %q: want %s or %s", c.Output, OutputText, OutputJSON)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: workers must not be negative, got %d", c.Workers)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("config: max_depth must not be negative, got %d", c.MaxDepth)
	}
	return nil
}

// Level returns the parsed log level. Validate has already checked it.
func (c *Config) Level() logger.Level {
	l, _ := logger.ParseLevel(c.LogLevel)
	return l
}

// JSON reports whether results are printed as JSON.
func (c *Config) JSON() bool {
	return c.Output == OutputJSON
}
