package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/calculator"
)

func load(t *testing.T, cfgFile string) (*Config, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	v := viper.New()
	require.NoError(t, Init(v, cfgFile))
	return Load(v)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "./data/settleup.db", cfg.Database.Path)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	rc, err := cfg.ReducerConfig()
	require.NoError(t, err)
	assert.Equal(t, calculator.ResidualIgnore, rc.Policy)
	assert.True(t, rc.Tolerance.Equal(calculator.DefaultTolerance))
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SETTLEUP_SERVER_PORT", "9090")
	t.Setenv("SETTLEUP_AUTH_JWT_SECRET", "from-env")
	t.Setenv("SETTLEUP_SETTLEMENT_RESIDUAL_POLICY", "error")

	cfg, err := load(t, "")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	rc, err := cfg.ReducerConfig()
	require.NoError(t, err)
	assert.Equal(t, calculator.ResidualError, rc.Policy)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settleup.yaml")
	content := `
server:
  port: 7000
database:
  path: /tmp/ledger.db
auth:
  token_ttl: 2h
logging:
  format: json
settlement:
  residual_policy: absorb
  residual_tolerance: "0.05"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := load(t, path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.Path)
	assert.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "json", cfg.Logging.Format)

	rc, err := cfg.ReducerConfig()
	require.NoError(t, err)
	assert.Equal(t, calculator.ResidualAbsorb, rc.Policy)
	assert.Equal(t, "0.05", rc.Tolerance.String())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown policy", map[string]string{"SETTLEUP_SETTLEMENT_RESIDUAL_POLICY": "round"}},
		{"bad tolerance", map[string]string{"SETTLEUP_SETTLEMENT_RESIDUAL_TOLERANCE": "a lot"}},
		{"negative tolerance", map[string]string{"SETTLEUP_SETTLEMENT_RESIDUAL_TOLERANCE": "-1"}},
		{"zero tolerance", map[string]string{"SETTLEUP_SETTLEMENT_RESIDUAL_TOLERANCE": "0"}},
		{"bad log level", map[string]string{"SETTLEUP_LOGGING_LEVEL": "loud"}},
		{"bad port", map[string]string{"SETTLEUP_SERVER_PORT": "70000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := load(t, "")
			assert.Error(t, err)
		})
	}
}

func TestInit_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	err := Init(v, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
