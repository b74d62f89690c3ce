package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pdftools/backend/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<PDFTools>")
	assert.Contains(t, string(data), "<TickIntervalMs>200</TickIntervalMs>")
}

func TestLoadConfig_RoundTripsSavedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)

	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Wizard.MaxFiles = 5
	cfg.Advanced.DefaultTheme = "dark"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, loaded.Server.Port)
	assert.Equal(t, 5, loaded.Wizard.MaxFiles)
	assert.Equal(t, theme.Dark, loaded.DefaultTheme())
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	xml := `<?xml version="1.0" encoding="UTF-8"?>
<PDFTools>
  <Server><Port>9200</Port></Server>
</PDFTools>`
	require.NoError(t, os.WriteFile(path, []byte(xml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.BindAddress)
	assert.Equal(t, 200, cfg.Wizard.TickIntervalMs)
	assert.Equal(t, "info", cfg.Advanced.LogLevel)
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9300")
	t.Setenv("PDFTOOLS_LOG_LEVEL", "debug")
	t.Setenv("PDFTOOLS_LOG_FORMAT", "text")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), DefaultFileName))
	require.NoError(t, err)
	assert.Equal(t, 9300, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.LogConfig().Level)
	assert.Equal(t, "text", cfg.LogConfig().Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"malformed", "<PDFTools><Server>"},
		{"bad port", "<PDFTools><Server><Port>70000</Port></Server></PDFTools>"},
		{"bad theme", "<PDFTools><Advanced><DefaultTheme>sepia</DefaultTheme></Advanced></PDFTools>"},
		{"bad level", "<PDFTools><Advanced><LogLevel>loud</LogLevel></Advanced></PDFTools>"},
		{"bad format", "<PDFTools><Advanced><LogFormat>yaml</LogFormat></Advanced></PDFTools>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), DefaultFileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.xml), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestDerivedValues(t *testing.T) {
	cfg := DefaultConfig()

	sim := cfg.Simulation()
	assert.Equal(t, 200*time.Millisecond, sim.Interval)
	assert.Equal(t, 15.0, sim.MaxIncrement)
	assert.Equal(t, 500*time.Millisecond, sim.CompletionDelay)

	assert.Equal(t, 30*time.Minute, cfg.SessionTimeout())
	assert.Equal(t, 5*time.Minute, cfg.KeepAlive())
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval())
	assert.Equal(t, "0.0.0.0:8090", cfg.GetServerAddr())

	cfg.Sessions.CleanupIntervalMinutes = 0
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval())
}
