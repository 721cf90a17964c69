package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sql", cfg.Matching.Strategy)
	assert.Equal(t, []string{"address_partial_name", "full_name"}, cfg.Matching.Rules)
	assert.False(t, cfg.Matching.RequireZip)
}

func TestLoad_YAML(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
database:
  busy_timeout: 2s
matching:
  strategy: memory
  rules: [full_name]
  require_zip: true
import:
  contribution_columns:
    contributor_first_name: First Name
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout)
	assert.Equal(t, "memory", cfg.Matching.Strategy)
	assert.Equal(t, []string{"full_name"}, cfg.Matching.Rules)
	assert.True(t, cfg.Matching.RequireZip)
	assert.Equal(t, "First Name", cfg.Import.ContributionColumns["contributor_first_name"])
	assert.Equal(t, 500, cfg.Import.BatchSize, "unset keys keep their defaults")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CURE_LOG_LEVEL", "warn")
	t.Setenv("CURE_MATCH_RULES", "full_name,name_zip")
	t.Setenv("CURE_MATCH_REQUIRE_ZIP", "true")
	t.Setenv("CURE_DB_BUSY_TIMEOUT", "250ms")
	t.Setenv("CURE_IMPORT_BATCH_SIZE", "50")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"full_name", "name_zip"}, cfg.Matching.Rules)
	assert.True(t, cfg.Matching.RequireZip)
	assert.Equal(t, 250*time.Millisecond, cfg.Database.BusyTimeout)
	assert.Equal(t, 50, cfg.Import.BatchSize)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CURE_REPORT_FORMAT=html\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CURE_REPORT_FORMAT") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "html", cfg.Report.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown strategy", env: map[string]string{"CURE_MATCH_STRATEGY": "graph"}},
		{name: "unknown rule", env: map[string]string{"CURE_MATCH_RULES": "soundex"}},
		{name: "bad log level", env: map[string]string{"CURE_LOG_LEVEL": "loud"}},
		{name: "bad bool", env: map[string]string{"CURE_PRETTY_LOGS": "maybe"}},
		{name: "bad exporter", env: map[string]string{"CURE_TRACE_EXPORTER": "zipkin"}},
		{name: "batch too large", env: map[string]string{"CURE_IMPORT_BATCH_SIZE": "5000"}},
		{name: "bad int", env: map[string]string{"CURE_IMPORT_BATCH_SIZE": "many"}},
		{name: "bad duration", env: map[string]string{"CURE_DB_BUSY_TIMEOUT": "soon"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			require.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
