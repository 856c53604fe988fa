package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Service.URL)
	assert.Equal(t, 15*time.Second, cfg.Service.Timeout)
	assert.Equal(t, 50, cfg.Service.EntryLimit)
	assert.Equal(t, "tr", cfg.Display.Locale)
	assert.Equal(t, 7, cfg.Display.WindowDays)
	assert.True(t, cfg.Storage.OfflineFallback)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Error(t, cfg.RequireService())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
service:
  url: http://10.0.0.5:8000
  timeout: 5s
display:
  locale: en
  timezone: Europe/Istanbul
  window_days: 14
logging:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8000", cfg.Service.URL)
	assert.Equal(t, 5*time.Second, cfg.Service.Timeout)
	assert.Equal(t, "en", cfg.Display.Locale)
	assert.Equal(t, 14, cfg.Display.WindowDays)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.RequireService())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Istanbul", loc.String())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "service:\n  url: http://from-file:8000\n")
	t.Setenv("JOURNAL_SERVICE_URL", "http://from-env:9000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:9000", cfg.Service.URL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"window":   "display:\n  window_days: 0\n",
		"timezone": "display:\n  timezone: Mars/Olympus\n",
		"format":   "logging:\n  format: xml\n",
		"limit":    "service:\n  entry_limit: -1\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
