package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for quiz rules and the Open Trivia DB endpoints, applied
// wherever the config file leaves a field empty.
const (
	DefaultBaseURL      = "https://opentdb.com/api.php"
	DefaultCatalogURL   = "https://opentdb.com/api_category.php"
	DefaultAmount       = 10
	DefaultTotalTime    = 60
	DefaultPassingScore = 70
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Provider struct {
		BaseURL    string `yaml:"base_url"`
		CatalogURL string `yaml:"catalog_url"`
		Amount     int    `yaml:"amount"`
		Category   int    `yaml:"category"`
		Timeout    string `yaml:"timeout"`
		CatalogTTL string `yaml:"catalog_ttl"`
	} `yaml:"provider"`
	Quiz struct {
		TotalTime    int `yaml:"total_time"`
		PassingScore int `yaml:"passing_score"`
	} `yaml:"quiz"`
	Session struct {
		File string `yaml:"file"`
	} `yaml:"session"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty
// or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// IntOr returns v when positive, otherwise the fallback.
func IntOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// StringOr returns v when non-empty, otherwise the fallback.
func StringOr(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
