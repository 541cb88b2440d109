package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamtiwari158/securify/pkg/config"
)

type testConfig struct {
	Issuer  string        `env:"TWOFA_ISSUER" envDefault:"Securify"`
	Window  int           `env:"TWOFA_LOGIN_WINDOW" envDefault:"1"`
	TTL     time.Duration `env:"TWOFA_CHALLENGE_TTL" envDefault:"5m"`
	Enabled bool          `env:"TWOFA_SECRET_ON_REGISTER" envDefault:"true"`
	Hosts   []string      `env:"HOSTS" envSeparator:","`
}

type requiredConfig struct {
	DSN string `env:"PG_DSN,required"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	require.NoError(t, config.Load(&cfg, config.WithEnviron(map[string]string{})))

	assert.Equal(t, "Securify", cfg.Issuer)
	assert.Equal(t, 1, cfg.Window)
	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.True(t, cfg.Enabled)
	assert.Empty(t, cfg.Hosts)
}

func TestLoad_Environment(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	require.NoError(t, config.Load(&cfg, config.WithEnviron(map[string]string{
		"TWOFA_ISSUER":             "Acme",
		"TWOFA_LOGIN_WINDOW":       "3",
		"TWOFA_CHALLENGE_TTL":      "30s",
		"TWOFA_SECRET_ON_REGISTER": "false",
		"HOSTS":                    "a,b",
	})))

	assert.Equal(t, "Acme", cfg.Issuer)
	assert.Equal(t, 3, cfg.Window)
	assert.Equal(t, 30*time.Second, cfg.TTL)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, []string{"a", "b"}, cfg.Hosts)
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("TWOFA_ISSUER", "FromProcess")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg))
	assert.Equal(t, "FromProcess", cfg.Issuer)
}

func TestLoad_Layering(t *testing.T) {
	t.Parallel()

	yamlPath := writeFile(t, "config.yaml", `
TWOFA_ISSUER: FromYAML
TWOFA_LOGIN_WINDOW: 2
TWOFA_CHALLENGE_TTL: 1m
HOSTS:
  - x
  - y
`)
	dotEnv := writeFile(t, ".env", "TWOFA_LOGIN_WINDOW=4\nTWOFA_CHALLENGE_TTL=2m\n")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg,
		config.WithYAMLFile(yamlPath),
		config.WithDotEnv(dotEnv),
		config.WithEnviron(map[string]string{"TWOFA_CHALLENGE_TTL": "3m"}),
	))

	assert.Equal(t, "FromYAML", cfg.Issuer)
	assert.Equal(t, 4, cfg.Window)
	assert.Equal(t, 3*time.Minute, cfg.TTL)
	assert.Equal(t, []string{"x", "y"}, cfg.Hosts)
}

func TestLoad_DotEnvFirstFileWins(t *testing.T) {
	t.Parallel()

	first := writeFile(t, "first.env", "TWOFA_ISSUER=first\n")
	second := writeFile(t, "second.env", "TWOFA_ISSUER=second\nTWOFA_LOGIN_WINDOW=7\n")

	var cfg testConfig
	require.NoError(t, config.Load(&cfg,
		config.WithDotEnv(first, second),
		config.WithEnviron(map[string]string{}),
	))
	assert.Equal(t, "first", cfg.Issuer)
	assert.Equal(t, 7, cfg.Window)
}

func TestLoad_MissingFilesSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var cfg testConfig
	require.NoError(t, config.Load(&cfg,
		config.WithYAMLFile(filepath.Join(dir, "nope.yaml")),
		config.WithDotEnv(filepath.Join(dir, "nope.env")),
		config.WithEnviron(map[string]string{}),
	))
	assert.Equal(t, "Securify", cfg.Issuer)
}

func TestLoad_Prefix(t *testing.T) {
	t.Parallel()

	var cfg testConfig
	require.NoError(t, config.Load(&cfg,
		config.WithPrefix("APP_"),
		config.WithEnviron(map[string]string{"APP_TWOFA_ISSUER": "Prefixed", "TWOFA_ISSUER": "ignored"}),
	))
	assert.Equal(t, "Prefixed", cfg.Issuer)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	t.Run("nil pointer", func(t *testing.T) {
		t.Parallel()
		var cfg *testConfig
		assert.ErrorIs(t, config.Load(cfg), config.ErrNilPointer)
	})

	t.Run("missing required", func(t *testing.T) {
		t.Parallel()
		var cfg requiredConfig
		err := config.Load(&cfg, config.WithEnviron(map[string]string{}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("bad value", func(t *testing.T) {
		t.Parallel()
		var cfg testConfig
		err := config.Load(&cfg, config.WithEnviron(map[string]string{"TWOFA_LOGIN_WINDOW": "many"}))
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "bad.yaml", "TWOFA_ISSUER: [unterminated\n")
		var cfg testConfig
		err := config.Load(&cfg, config.WithYAMLFile(path), config.WithEnviron(map[string]string{}))
		assert.ErrorIs(t, err, config.ErrReadingSource)
	})

	t.Run("nested yaml", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, "nested.yaml", "TWOFA:\n  ISSUER: x\n")
		var cfg testConfig
		err := config.Load(&cfg, config.WithYAMLFile(path), config.WithEnviron(map[string]string{}))
		assert.ErrorIs(t, err, config.ErrReadingSource)
	})
}

func TestMustLoad(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg, config.WithEnviron(map[string]string{}))
	})
	assert.NotPanics(t, func() {
		var cfg requiredConfig
		config.MustLoad(&cfg, config.WithEnviron(map[string]string{"PG_DSN": "postgres://x"}))
	})
}
