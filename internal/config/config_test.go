package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/castlemilk/eeff/internal/extraction"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eeff.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New(), writeConfig(t, ""))
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	want := Default()
	if cfg.DemoPath != want.DemoPath {
		t.Errorf("DemoPath = %q, want %q", cfg.DemoPath, want.DemoPath)
	}
	if cfg.Format != "text" {
		t.Errorf("Format = %q, want text", cfg.Format)
	}
	if cfg.Server.Port != "8111" {
		t.Errorf("Server.Port = %q, want 8111", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadBytes != want.Server.MaxUploadBytes {
		t.Errorf("Server.MaxUploadBytes = %d, want %d", cfg.Server.MaxUploadBytes, want.Server.MaxUploadBytes)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("Catalog() error = %v", err)
	}
	if catalog.Len() != 15 {
		t.Errorf("default catalog has %d categories, want 15", catalog.Len())
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
demo_path: reports/2023.pdf
format: csv
max_text_bytes: 4096
server:
  port: "9000"
  allowed_origins:
    - https://example.com
categories:
  - label: Activo Corriente
    code: "11000"
  - label: Pasivo Corriente
    code: "21000"
`)

	cfg, err := load(viper.New(), path)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.DemoPath != "reports/2023.pdf" || cfg.Format != "csv" || cfg.MaxTextBytes != 4096 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if cfg.Server.Port != "9000" || len(cfg.Server.AllowedOrigins) != 1 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}

	extCfg, err := cfg.ExtractionConfig()
	if err != nil {
		t.Fatalf("ExtractionConfig() error = %v", err)
	}
	if extCfg.Catalog.Len() != 2 || extCfg.Catalog.Labels()[1] != "Pasivo Corriente" {
		t.Fatalf("unexpected catalog labels: %v", extCfg.Catalog.Labels())
	}
	if extCfg.MaxTextBytes != 4096 {
		t.Errorf("MaxTextBytes = %d, want 4096", extCfg.MaxTextBytes)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("EEFF_FORMAT", "json")
	t.Setenv("EEFF_SERVER_PORT", "7000")

	cfg, err := load(viper.New(), writeConfig(t, "format: csv\n"))
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Format)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("Server.Port = %q, want 7000", cfg.Server.Port)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown format", "format: xlsx\n"},
		{"negative text cap", "max_text_bytes: -1\n"},
		{"malformed yaml", "format: [\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := load(viper.New(), writeConfig(t, tc.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestConfig_CatalogInvalidCategories(t *testing.T) {
	cfg := Default()
	cfg.Categories = nil
	if _, err := cfg.Catalog(); err != nil {
		t.Fatalf("empty categories should select the default catalog: %v", err)
	}

	cfg.Categories = []extraction.Category{{Label: "Caja", Code: "1"}}
	if _, err := cfg.Catalog(); err == nil {
		t.Fatal("expected error for invalid code")
	}
}
