package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/modelc"
	"github.com/syssam/modelc/compiler/gen"
)

func flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("modelc", pflag.ContinueOnError)
	fs.String("models", "", "")
	fs.String("storage", "", "")
	fs.Int("workers", 0, "")
	fs.String("log-level", "", "")
	fs.StringSlice("features", nil, "")
	return fs
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modelc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultModels, cfg.Models)
	assert.Equal(t, DefaultTarget, cfg.Target)
	assert.Equal(t, DefaultSnapshot, cfg.Snapshot)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Empty(t, cfg.File)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeFile(t, `
models: declarations
storage: mysql
workers: 2
package: example.com/app/models
features: [schema/snapshot]
log:
  level: debug
  format: json
watch:
  debounce: 1s
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := Load(path, flagSet())
		require.NoError(t, err)
		assert.Equal(t, path, cfg.File)
		assert.Equal(t, "declarations", cfg.Models)
		assert.Equal(t, "mysql", cfg.Storage)
		assert.Equal(t, 2, cfg.Workers)
		assert.Equal(t, "example.com/app/models", cfg.Package)
		assert.Equal(t, []string{"schema/snapshot"}, cfg.Features)
		assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
		assert.Equal(t, time.Second, cfg.Watch.Debounce)
		assert.Equal(t, DefaultTarget, cfg.Target, "defaults fill unset keys")
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("MODELC_STORAGE", "sqlite")
		t.Setenv("MODELC_LOG_LEVEL", "warn")
		cfg, err := Load(path, flagSet())
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Storage)
		assert.Equal(t, "warn", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("MODELC_STORAGE", "sqlite")
		fs := flagSet()
		require.NoError(t, fs.Parse([]string{"--storage", "postgres", "--log-level", "error", "--workers", "8"}))
		cfg, err := Load(path, fs)
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.Storage)
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, 8, cfg.Workers)
		assert.Equal(t, "declarations", cfg.Models, "unchanged flags do not override")
	})
}

func TestLoadFindsFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "modelc.yml"), []byte("target: out\n"), 0o600))
	t.Chdir(dir)
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "modelc.yml", cfg.File)
	assert.Equal(t, "out", cfg.Target)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"log level", "log: {level: loud}", `invalid log level "loud"`},
		{"log format", "log: {format: xml}", `invalid log format "xml"`},
		{"workers", "workers: -1", "invalid workers -1"},
		{"debounce", "watch: {debounce: 0s}", "invalid watch debounce 0s"},
		{"yaml", "models: [", "error reading config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content), nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "model", "shop.Order")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"model":"shop.Order"`)

	buf.Reset()
	logger, err = LogConfig{Level: "debug", Format: "text"}.Logger(&buf)
	require.NoError(t, err)
	logger.Debug("compiled")
	assert.Contains(t, buf.String(), "level=DEBUG msg=compiled")
}

func TestGenOptions(t *testing.T) {
	cfg := &Config{
		Target:   t.TempDir(),
		Package:  "example.com/app/shop",
		Header:   "// Code generated by modelc. DO NOT EDIT.",
		Storage:  "pg",
		Workers:  3,
		Features: []string{"schema/snapshot"},
	}
	r := modelc.NewRegistry()
	c, err := gen.NewConfig(cfg.GenOptions(slog.New(slog.DiscardHandler), r)...)
	require.NoError(t, err)
	assert.Equal(t, cfg.Target, c.Target)
	assert.Equal(t, "example.com/app/shop", c.Package)
	assert.Equal(t, "postgres", c.Storage.Name)
	assert.Equal(t, 3, c.Workers)
	assert.Same(t, r, c.Registry)
	enabled, err := c.FeatureEnabled("schema/snapshot")
	require.NoError(t, err)
	assert.True(t, enabled)

	cfg.Features = []string{"nope"}
	_, err = gen.NewConfig(cfg.GenOptions(slog.New(slog.DiscardHandler), r)...)
	assert.True(t, gen.IsConfigError(err))
}
