// Package config loads extractor settings from defaults, an optional YAML
// file and EEFF_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/castlemilk/eeff/internal/extraction"
)

// Config holds all application configuration.
type Config struct {
	DemoPath      string                `mapstructure:"demo_path"`
	Format        string                `mapstructure:"format"`
	PageSeparator string                `mapstructure:"page_separator"`
	MaxTextBytes  int                   `mapstructure:"max_text_bytes"`
	Categories    []extraction.Category `mapstructure:"categories"`
	Server        ServerConfig          `mapstructure:"server"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		DemoPath:      "202312_CMI_EEFF_ER.pdf",
		Format:        "text",
		PageSeparator: "\n",
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           "8111",
			AllowedOrigins: []string{"http://localhost:1234", "http://127.0.0.1:1234"},
			MaxUploadBytes: 20 << 20,
		},
	}
}

// Load reads configuration. cfgFile may be empty, in which case
// ./eeff.yaml and $HOME/.eeff/eeff.yaml are tried; a missing file is not an
// error.
func Load(cfgFile string) (*Config, error) {
	return load(viper.New(), cfgFile)
}

func load(v *viper.Viper, cfgFile string) (*Config, error) {
	defaults := Default()
	v.SetDefault("demo_path", defaults.DemoPath)
	v.SetDefault("format", defaults.Format)
	v.SetDefault("page_separator", defaults.PageSeparator)
	v.SetDefault("max_text_bytes", defaults.MaxTextBytes)
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("server.allowed_origins", defaults.Server.AllowedOrigins)
	v.SetDefault("server.max_upload_bytes", defaults.Server.MaxUploadBytes)

	// EEFF_SERVER_PORT -> server.port
	v.SetEnvPrefix("EEFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("eeff")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.eeff")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "csv", "json":
	default:
		return fmt.Errorf("format must be text, csv or json, got %q", c.Format)
	}
	if c.MaxTextBytes < 0 {
		return fmt.Errorf("max_text_bytes must not be negative")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	return nil
}

// Catalog returns the configured catalog, or the default one when no
// categories are configured.
func (c *Config) Catalog() (*extraction.Catalog, error) {
	if len(c.Categories) == 0 {
		return extraction.DefaultCatalog(), nil
	}
	catalog, err := extraction.NewCatalog(c.Categories)
	if err != nil {
		return nil, fmt.Errorf("invalid categories: %w", err)
	}
	return catalog, nil
}

// ExtractionConfig builds the extractor configuration.
func (c *Config) ExtractionConfig() (extraction.Config, error) {
	catalog, err := c.Catalog()
	if err != nil {
		return extraction.Config{}, err
	}
	return extraction.Config{
		Catalog:       catalog,
		PageSeparator: c.PageSeparator,
		MaxTextBytes:  c.MaxTextBytes,
	}, nil
}
