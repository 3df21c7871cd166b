package config

import (
	"math"
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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "files", cfg.Data.Source)
	assert.Equal(t, 0.1, cfg.Map.SampleFraction)
	assert.Equal(t, int64(10), cfg.Map.SampleSeed)
	assert.Equal(t, "large", cfg.Session.DefaultVariant)
	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddr())
}

func TestLoadFileValues(t *testing.T) {
	path := writeConfig(t, `
data:
  source: database
database:
  driver: sqlite
  path: /var/lib/parceldash/parcels.db
  tables:
    large: merged
    reduced: details_2024
map:
  sample_fraction: 0.25
  zoning_files: [zoning/base.shp, zoning/overlay.shp]
  state_plane: true
session:
  default_variant: reduced
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, map[string]string{"large": "merged", "reduced": "details_2024"}, cfg.Database.Tables)
	assert.Equal(t, []string{"zoning/base.shp", "zoning/overlay.shp"}, cfg.Map.ZoningFiles)
	assert.True(t, cfg.Map.StatePlane)
	assert.Equal(t, "reduced", cfg.Session.DefaultVariant)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PARCELDASH_SERVER_PORT", "7070")
	t.Setenv("PARCELDASH_LOG_LEVEL", "debug")
	t.Setenv("DB_HOST", "adb.example.com")

	cfg, err := Load(writeConfig(t, "log:\n  level: info\n"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "adb.example.com", cfg.Database.Host, "legacy DB_* variables still apply")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:  ServerConfig{Port: 8080, Mode: "release"},
			Log:     LogConfig{Level: "info", Format: "text"},
			Data:    DataConfig{Source: "files"},
			Map:     MapConfig{SampleFraction: 0.1},
			Session: SessionConfig{DefaultVariant: "large"},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad mode", func(c *Config) { c.Server.Mode = "prod" }},
		{"bad level", func(c *Config) { c.Log.Level = "trace" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"bad source", func(c *Config) { c.Data.Source = "s3" }},
		{"database without tables", func(c *Config) {
			c.Data.Source = "database"
			c.Database = DatabaseConfig{Driver: "oracle", Host: "db"}
		}},
		{"sqlite without path", func(c *Config) {
			c.Data.Source = "database"
			c.Database = DatabaseConfig{Driver: "sqlite", Tables: map[string]string{"large": "t"}}
		}},
		{"zero sample", func(c *Config) { c.Map.SampleFraction = 0 }},
		{"NaN sample", func(c *Config) { c.Map.SampleFraction = math.NaN() }},
		{"unknown variant", func(c *Config) { c.Session.DefaultVariant = "medium" }},
		{"metrics port", func(c *Config) {
			c.Observability = ObservabilityConfig{EnableMetrics: true}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
