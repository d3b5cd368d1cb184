package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/grammargen/pkg/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "grammargen-*.yaml")
	require.NoError(t, err)

	_, writeErr := tmpFile.WriteString(content)
	require.NoError(t, writeErr)
	require.NoError(t, tmpFile.Close())

	return tmpFile.Name()
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "CSCSCA", cfg.Grammar.Name)
	assert.Equal(t, "source.sca", cfg.Grammar.ScopeName)
	assert.Equal(t, "syntaxes/grammar.json", cfg.Output.Path)
	assert.Empty(t, cfg.Output.Indent)
	assert.False(t, cfg.Spec.StrictNames)
	assert.False(t, cfg.Staging.Overwrite)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Empty(t, cfg.Telemetry.OTLPEndpoint)
	assert.False(t, cfg.Telemetry.DebugTrace)

	size, err := cfg.MaxSpecBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000*1000), size)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
grammar:
  name: "Foo"
  scope_name: "source.foo"
output:
  path: "out/foo.tmLanguage.json"
  indent: "  "
spec:
  max_size: "64KiB"
  strict_names: true
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Foo", cfg.Grammar.Name)
	assert.Equal(t, "source.foo", cfg.Grammar.ScopeName)
	assert.Equal(t, "out/foo.tmLanguage.json", cfg.Output.Path)
	assert.Equal(t, "  ", cfg.Output.Indent)
	assert.True(t, cfg.Spec.StrictNames)

	size, err := cfg.MaxSpecBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(64*1024), size)

	level, err := cfg.LogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("GRAMMARGEN_GRAMMAR_SCOPE_NAME", "source.env")
	t.Setenv("GRAMMARGEN_SPEC_STRICT_NAMES", "true")
	t.Setenv("GRAMMARGEN_TELEMETRY_OTLP_ENDPOINT", "localhost:4317")
	t.Setenv("GRAMMARGEN_TELEMETRY_DEBUG_TRACE", "true")

	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "source.env", cfg.Grammar.ScopeName)
	assert.True(t, cfg.Spec.StrictNames)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.OTLPEndpoint)
	assert.True(t, cfg.Telemetry.DebugTrace)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr error
	}{
		{"defaults", func(*config.Config) {}, nil},
		{"empty scope", func(c *config.Config) { c.Grammar.ScopeName = " " }, config.ErrEmptyScopeName},
		{"absolute output", func(c *config.Config) { c.Output.Path = "/etc/grammar.json" }, config.ErrInvalidOutputPath},
		{"escaping output", func(c *config.Config) { c.Output.Path = "../grammar.json" }, config.ErrInvalidOutputPath},
		{"empty output", func(c *config.Config) { c.Output.Path = "" }, config.ErrInvalidOutputPath},
		{"bad size", func(c *config.Config) { c.Spec.MaxSize = "lots" }, config.ErrInvalidMaxSize},
		{"zero size", func(c *config.Config) { c.Spec.MaxSize = "0B" }, config.ErrInvalidMaxSize},
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }, config.ErrInvalidLogLevel},
		{"bad format", func(c *config.Config) { c.Logging.Format = "xml" }, config.ErrInvalidLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)

				return
			}

			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
