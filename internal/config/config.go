// Package config loads battlesim configuration from a file, the
// environment and built-in defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. BATTLESIM_BATTLE_SEED.
const EnvPrefix = "BATTLESIM"

// Config is the root configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Battle  BattleConfig  `mapstructure:"battle"`
	Replay  ReplayConfig  `mapstructure:"replay"`
}

// LoggingConfig selects the zap level and encoder.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// BattleConfig drives the scripted exchange.
type BattleConfig struct {
	Seed     uint64 `mapstructure:"seed"`
	BattleID string `mapstructure:"battle_id"` // empty means generate one
	Turns    int    `mapstructure:"turns"`
	MaxHP    int    `mapstructure:"max_hp"`
}

// ReplayConfig controls journaling.
type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Battle: BattleConfig{
			Seed:  1,
			Turns: 5,
			MaxHP: 160,
		},
		Replay: ReplayConfig{
			Enabled: true,
			Dir:     "replays",
		},
	}
}

// SetDefaults registers every default on v so environment overrides are
// picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("battle.seed", defaults.Battle.Seed)
	v.SetDefault("battle.battle_id", defaults.Battle.BattleID)
	v.SetDefault("battle.turns", defaults.Battle.Turns)
	v.SetDefault("battle.max_hp", defaults.Battle.MaxHP)

	v.SetDefault("replay.enabled", defaults.Replay.Enabled)
	v.SetDefault("replay.dir", defaults.Replay.Dir)
}

// Load reads configuration. An empty path skips the file and uses
// defaults plus environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidLogLevels returns the accepted logging levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		return fmt.Errorf("%w: logging.level %q", ErrInvalidConfig, c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("%w: logging.format %q", ErrInvalidConfig, c.Logging.Format)
	}
	if c.Battle.Turns < 1 {
		return fmt.Errorf("%w: battle.turns must be at least 1, got %d", ErrInvalidConfig, c.Battle.Turns)
	}
	if c.Battle.MaxHP < 1 {
		return fmt.Errorf("%w: battle.max_hp must be positive, got %d", ErrInvalidConfig, c.Battle.MaxHP)
	}
	if c.Replay.Enabled && c.Replay.Dir == "" {
		return fmt.Errorf("%w: replay.dir is required when replays are enabled", ErrInvalidConfig)
	}
	return nil
}
