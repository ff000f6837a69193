package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":9876", cfg.Server.Addr)
	assert.Equal(t, "/hub", cfg.Server.BasePath)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.ChartTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Activity.Enabled)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hubctl.yaml")
	body := `
server:
  addr: ":8080"
dashboard:
  date: "2026-02-11"
  chart_ttl: 5s
datasets:
  base_url: http://datasets.local
  timeout: 2s
activity:
  enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "/hub", cfg.Server.BasePath, "unset keys keep defaults")
	assert.Equal(t, "2026-02-11", cfg.Dashboard.Date)
	assert.Equal(t, 5*time.Second, cfg.Dashboard.ChartTTL)
	assert.Equal(t, 2*time.Second, cfg.Datasets.Timeout)
	assert.True(t, cfg.Activity.Enabled)
	assert.Equal(t, "hub", cfg.Activity.Channel)
}

func TestDecodeConfigRejectsUnknownKeys(t *testing.T) {
	cfg := defaultConfig()
	err := decodeConfig(strings.NewReader("server:\n  port: 80\n"), &cfg)
	require.Error(t, err)
}

func TestDecodeConfigAcceptsEmptyFile(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, decodeConfig(strings.NewReader(""), &cfg))
	assert.Equal(t, defaultConfig(), cfg)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestNewLoggerJSONCarriesAppName(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LogConfig{Level: "debug", Format: "json"})
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.Debug("hello")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hubctl", entry["app"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestNewLoggerInvalidLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, LogConfig{Level: "loud"})
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), "invalid log level")
}

func TestExampleConfigLoads(t *testing.T) {
	cfg, err := loadConfig("hubctl.example.yaml")
	require.NoError(t, err)
	assert.Equal(t, "16:30", cfg.Dashboard.Clock)
	assert.Equal(t, "./widgets.example.yaml", cfg.Dashboard.Manifest)
	assert.True(t, cfg.Activity.Enabled)
}
