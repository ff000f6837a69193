package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the hubctl configuration file.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Datasets  DatasetsConfig  `yaml:"datasets"`
	Log       LogConfig       `yaml:"log"`
	Activity  ActivityConfig  `yaml:"activity"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr     string `yaml:"addr"`
	BasePath string `yaml:"base_path"`
}

// DashboardConfig configures the dashboard itself.
type DashboardConfig struct {
	Title    string `yaml:"title"`
	Date     string `yaml:"date"`
	Clock    string `yaml:"clock"`
	Manifest string `yaml:"manifest"`
	// ChartTTL caches rendered charts; zero disables caching.
	ChartTTL time.Duration `yaml:"chart_ttl"`
}

// DatasetsConfig points the dashboard at a remote hub data service. An empty
// base URL keeps the built-in demo data.
type DatasetsConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig configures logrus.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ActivityConfig toggles activity events for HTD edits.
type ActivityConfig struct {
	Enabled bool   `yaml:"enabled"`
	Channel string `yaml:"channel"`
}

func defaultConfig() Config {
	return Config{
		Server:    ServerConfig{Addr: ":9876", BasePath: "/hub"},
		Dashboard: DashboardConfig{Title: "Hub Summary", ChartTTL: 30 * time.Second},
		Log:       LogConfig{Level: "info", Format: "text"},
		Activity:  ActivityConfig{Channel: "hub"},
	}
}

// loadConfig reads path over the defaults. A missing path returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return cfg, fmt.Errorf("hubctl: open config: %w", err)
	}
	defer f.Close()
	if err := decodeConfig(f, &cfg); err != nil {
		return cfg, fmt.Errorf("hubctl: %s: %w", path, err)
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}
