// package config loads application configuration from a yaml file, .env and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// dataset
	DataFile    string `yaml:"data_file"`
	DatabaseURL string `yaml:"database_url"` // empty means serve straight from DataFile

	// nats
	NatsURL string `yaml:"nats_url"`

	// server
	HTTPPort         int      `yaml:"http_port"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	ReportRatePerSec float64  `yaml:"report_rate_per_sec"`
	ReportBurst      int      `yaml:"report_burst"`

	// logging
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		DataFile:         "data/larger_sales_dataset.csv",
		NatsURL:          "nats://localhost:4222",
		HTTPPort:         5000,
		AllowedOrigins:   []string{"*"},
		ReportRatePerSec: 2,
		ReportBurst:      5,
		LogLevel:         "info",
		LogFile:          "./logs/dashboard.log",
	}
}

// Load builds the configuration. Precedence, lowest first: defaults, the yaml
// file named by CONFIG_FILE, the .env file, then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DataFile = getEnv("DATA_FILE", cfg.DataFile)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.NatsURL = getEnv("NATS_URL", cfg.NatsURL)
	cfg.HTTPPort = getEnvInt("HTTP_PORT", cfg.HTTPPort)
	cfg.AllowedOrigins = getEnvList("ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.ReportRatePerSec = getEnvFloat("REPORT_RATE_PER_SEC", cfg.ReportRatePerSec)
	cfg.ReportBurst = getEnvInt("REPORT_BURST", cfg.ReportBurst)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("LOG_FILE", cfg.LogFile)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseYAML decodes a yaml document on top of the defaults.
func ParseYAML(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *Config) Validate() error {
	if c.DataFile == "" && c.DatabaseURL == "" {
		return errors.New("one of data_file or database_url is required")
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port out of range: %d", c.HTTPPort)
	}
	if c.ReportRatePerSec < 0 {
		return fmt.Errorf("report_rate_per_sec must be >= 0, got %v", c.ReportRatePerSec)
	}
	if c.ReportBurst < 1 {
		return fmt.Errorf("report_burst must be >= 1, got %d", c.ReportBurst)
	}
	return nil
}

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
