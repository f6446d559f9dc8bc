package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{
		EnvConfigPath,
		"DOCGEN_RENDERER",
		"DOCGEN_FORMAT",
		"DOCGEN_LOCALE",
		"DOCGEN_LOG_LEVEL",
		"DOCGEN_OUTPUT",
		"DOCGEN_TEMPLATES_DIR",
		"DOCGEN_SANITIZE",
		"DOCGEN_HTTP_TIMEOUT_SECS",
		"DOCGEN_LABELER",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("renderer", "apidoc", "")
	flags.String("locale", "en", "")
	flags.String("log-level", "INFO", "")
	flags.Bool("sanitize", false, "")
	flags.Int("http-timeout", 0, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "apidoc", cfg.Renderer)
	assert.Equal(t, "", cfg.Format)
	assert.Equal(t, "en", cfg.Locale)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.False(t, cfg.Sanitize)
	assert.Equal(t, "sentence", cfg.Labeler)
	assert.Equal(t, time.Duration(0), cfg.HTTPTimeout())
}

func TestLoad_ConfigFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("renderer: markdown\nlocale: es\nsanitize: true\nhttp_timeout_secs: 5\n"), 0o644))
	t.Setenv(EnvConfigPath, path)

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.Renderer)
	assert.Equal(t, "es", cfg.Locale)
	assert.True(t, cfg.Sanitize)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read")
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "docgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte("renderer: markdown\n"), 0o644))
	t.Setenv(EnvConfigPath, path)
	t.Setenv("DOCGEN_RENDERER", "template")
	t.Setenv("DOCGEN_LOG_LEVEL", "debug")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "template", cfg.Renderer)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
}

func TestLoad_ChangedFlagsWin(t *testing.T) {
	isolate(t)
	t.Setenv("DOCGEN_RENDERER", "template")
	t.Setenv("DOCGEN_LOCALE", "es")

	cfg, err := Load(newFlags(t, "--renderer", "markdown", "--http-timeout", "10"))
	require.NoError(t, err)

	assert.Equal(t, "markdown", cfg.Renderer)
	assert.Equal(t, "es", cfg.Locale, "unchanged flags must not override the environment")
	assert.Equal(t, 10, cfg.HTTPTimeoutSecs)
}

func TestLoad_ValidationErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown format":    {"DOCGEN_FORMAT": "xml"},
		"unknown log level": {"DOCGEN_LOG_LEVEL": "loud"},
		"negative timeout":  {"DOCGEN_HTTP_TIMEOUT_SECS": "-1"},
		"unknown labeler":   {"DOCGEN_LABELER": "shout"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			isolate(t)
			for key, value := range env {
				t.Setenv(key, value)
			}

			_, err := Load(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config: validate")
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	require.Error(t, Validate(nil))
}
