// Package config loads settings from defaults, an optional YAML file, the
// environment and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/pkg/logging"
)

// EnvPrefix prefixes environment overrides, e.g. SETTLEUP_SERVER_PORT.
const EnvPrefix = "SETTLEUP"

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Settlement SettlementConfig `mapstructure:"settlement"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	ShutdownGrace  time.Duration `mapstructure:"shutdown_grace"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SettlementConfig controls how the reducer treats balances that do not net
// to zero.
type SettlementConfig struct {
	ResidualPolicy    string `mapstructure:"residual_policy"`
	ResidualTolerance string `mapstructure:"residual_tolerance"`
}

// SetDefaults registers the default value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_grace", 10*time.Second)
	v.SetDefault("database.path", "./data/settleup.db")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", logging.FormatConsole)
	v.SetDefault("settlement.residual_policy", string(calculator.ResidualIgnore))
	v.SetDefault("settlement.residual_tolerance", calculator.DefaultTolerance.String())
}

// Init points v at the config file and the environment. Without cfgFile it
// looks for config.yaml in ~/.config/settleup and the working directory; a
// missing file is not an error.
func Init(v *viper.Viper, cfgFile string) error {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".config", "settleup"))
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that decode but make no sense.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port: %d", c.Server.Port)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid auth.token_ttl: %s", c.Auth.TokenTTL)
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	if _, err := c.ReducerConfig(); err != nil {
		return err
	}
	return nil
}

// ReducerConfig returns the settlement reducer settings.
func (c *Config) ReducerConfig() (calculator.ReducerConfig, error) {
	policy, err := calculator.ParseResidualPolicy(c.Settlement.ResidualPolicy)
	if err != nil {
		return calculator.ReducerConfig{}, err
	}

	tolerance := calculator.DefaultTolerance
	if c.Settlement.ResidualTolerance != "" {
		tolerance, err = decimal.NewFromString(c.Settlement.ResidualTolerance)
		if err != nil {
			return calculator.ReducerConfig{}, fmt.Errorf("invalid settlement.residual_tolerance: %w", err)
		}
		if !tolerance.IsPositive() {
			return calculator.ReducerConfig{}, fmt.Errorf("invalid settlement.residual_tolerance: %s (must be positive; use residual_policy error to absorb nothing)", tolerance)
		}
	}

	return calculator.ReducerConfig{Policy: policy, Tolerance: tolerance}, nil
}
