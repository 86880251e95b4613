// Package config loads crsheet settings from a YAML file, the environment
// and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tsawler/crsheet/internal/logging"
)

// Text engines.
const (
	EngineNative = "native"
	EngineMuPDF  = "mupdf"
)

// EnvPrefix prefixes environment overrides, as in CRSHEET_TEMPLATE.
const EnvPrefix = "CRSHEET"

// TemplateFile is the template's file name when none is configured.
const TemplateFile = "CRS.xlsx"

// Config holds every setting.
type Config struct {
	Template   string         `mapstructure:"template" yaml:"template" json:"template"`
	TextEngine string         `mapstructure:"text_engine" yaml:"text_engine" json:"text_engine"`
	Open       bool           `mapstructure:"open" yaml:"open" json:"open"`
	Log        logging.Config `mapstructure:"log" yaml:"log" json:"log"`
}

// Load reads settings into a fresh viper instance. cfgFile may be empty.
func Load(cfgFile string) (*Config, error) {
	return LoadWith(viper.New(), cfgFile)
}

// LoadWith reads settings into v, which may already have flags bound.
// Precedence is flags, then environment (including a .env file in the
// working directory), then the config file, then defaults.
func LoadWith(v *viper.Viper, cfgFile string) (*Config, error) {
	_ = godotenv.Load()

	v.SetDefault("template", DefaultTemplate())
	v.SetDefault("text_engine", EngineNative)
	v.SetDefault("open", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatConsole)
	v.SetDefault("log.output", "stderr")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("crsheet")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "crsheet"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.TextEngine {
	case EngineNative, EngineMuPDF:
	default:
		return fmt.Errorf("invalid text_engine %q (want %s or %s)", c.TextEngine, EngineNative, EngineMuPDF)
	}
	switch strings.ToLower(c.Log.Format) {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid log.format %q (want console or json)", c.Log.Format)
	}
	if c.Template == "" {
		return errors.New("template path is empty")
	}
	return nil
}

// YAML renders the effective configuration.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// DefaultTemplate is CRS.xlsx next to the executable when that file
// exists, otherwise CRS.xlsx in the working directory.
func DefaultTemplate() string {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), TemplateFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return TemplateFile
}
