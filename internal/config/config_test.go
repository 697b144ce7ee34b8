package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
simulation:
  enabled: true
trading:
  initial_cash: 100000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.0-flash", cfg.Gemini.Model)
	assert.Equal(t, 120*time.Second, cfg.GeminiTimeout())
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval())
	assert.Equal(t, 15*time.Minute, cfg.AnalysisInterval())
	assert.Equal(t, int64(10), cfg.Trading.DefaultBuyQty)
	assert.Equal(t, 50, cfg.Trading.LogCapacity)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 100000.0, cfg.Trading.InitialCash)
}

func TestLoadRequiresAPIKeyOutsideSimulation(t *testing.T) {
	path := writeConfig(t, `
trading:
  initial_cash: 1000
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "gemini.api_key")
}

func TestLoadRejectsBadInterval(t *testing.T) {
	path := writeConfig(t, `
simulation:
  enabled: true
trading:
  refresh_interval: "soon"
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "refresh_interval")
}

func TestLoadRejectsIncompleteTelegram(t *testing.T) {
	path := writeConfig(t, `
simulation:
  enabled: true
telegram:
  enabled: true
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "telegram.bot_token")
}

func TestLoadRejectsMarketDataWithoutURL(t *testing.T) {
	path := writeConfig(t, `
simulation:
  enabled: true
marketdata:
  enabled: true
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "marketdata.base_url")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
