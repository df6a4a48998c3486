package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds process configuration. Environment variables provide the
// defaults; the YAML file named by TARIFF_CONFIG overrides them.
type Config struct {
	HTTPAddr    string        `yaml:"http_addr"`
	DatabaseURL string        `yaml:"database_url"`
	TenantID    string        `yaml:"tenant_id"`
	JWTSecret   string        `yaml:"jwt_secret"`
	Currency    string        `yaml:"currency"`
	Fetch       FetchConfig   `yaml:"fetch"`
	PDF         PDFConfig     `yaml:"pdf"`
	Report      ReportConfig  `yaml:"report"`
	Shutdown    time.Duration `yaml:"shutdown_timeout"`
}

// FetchConfig configures document retrieval.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Referer   string        `yaml:"referer"`
}

// PDFConfig configures PDF table reconstruction.
type PDFConfig struct {
	ColumnGap float64 `yaml:"column_gap"`
}

// ReportConfig configures exported spreadsheets and reports.
type ReportConfig struct {
	Font     string  `yaml:"font"`
	FontSize float64 `yaml:"font_size"`
	// FontFile is a TTF used for PDF output; empty keeps the core font.
	FontFile string `yaml:"font_file"`
}

// Load reads the environment and the optional YAML overlay.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:    getenvDefault("HTTP_ADDR", ":8080"),
		DatabaseURL: getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		TenantID:    getenvDefault("TENANT_ID", "tenant-demo"),
		JWTSecret:   getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		Currency:    getenvDefault("CURRENCY", "CNY"),
		Fetch: FetchConfig{
			Timeout:   getenvDuration("FETCH_TIMEOUT", 30*time.Second),
			UserAgent: getenvDefault("FETCH_USER_AGENT", "Mozilla/5.0"),
			Referer:   getenvDefault("FETCH_REFERER", "https://www.95598.cn/"),
		},
		PDF: PDFConfig{
			ColumnGap: getenvFloatDefault("PDF_COLUMN_GAP", 6),
		},
		Report: ReportConfig{
			Font:     getenvDefault("REPORT_FONT", "微软雅黑 Light"),
			FontSize: getenvFloatDefault("REPORT_FONT_SIZE", 10),
			FontFile: getenvDefault("REPORT_FONT_FILE", ""),
		},
		Shutdown: getenvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if path := os.Getenv("TARIFF_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if cfg.TenantID == "" {
		return cfg, errors.New("config: tenant id required")
	}
	if cfg.Fetch.Timeout <= 0 {
		return cfg, errors.New("config: fetch timeout must be positive")
	}
	return cfg, nil
}

// RequireServer checks the settings the HTTP server cannot run without.
func (c Config) RequireServer() error {
	if c.DatabaseURL == "" {
		return errors.New("config: DATABASE_URL or PG_DSN is required")
	}
	if c.JWTSecret == "" {
		return errors.New("config: AUTH_JWT_SECRET is required")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
