package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, uint64(1), cfg.Battle.Seed)
	assert.Empty(t, cfg.Battle.BattleID)
	assert.Equal(t, 5, cfg.Battle.Turns)
	assert.True(t, cfg.Replay.Enabled)
	assert.Equal(t, "replays", cfg.Replay.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "battlesim.yaml")
	content := `
logging:
  level: debug
  format: json
battle:
  seed: 123
  battle_id: cup-final
  turns: 3
replay:
  dir: /tmp/battles
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, uint64(123), cfg.Battle.Seed)
	assert.Equal(t, "cup-final", cfg.Battle.BattleID)
	assert.Equal(t, 3, cfg.Battle.Turns)
	assert.Equal(t, 160, cfg.Battle.MaxHP, "unset keys keep their defaults")
	assert.Equal(t, "/tmp/battles", cfg.Replay.Dir)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("BATTLESIM_BATTLE_SEED", "77")
	t.Setenv("BATTLESIM_REPLAY_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, uint64(77), cfg.Battle.Seed)
	assert.False(t, cfg.Replay.Enabled)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("BATTLESIM_LOGGING_LEVEL", "verbose")

	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, false},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, false},
		{"no turns", func(c *Config) { c.Battle.Turns = 0 }, false},
		{"no hp", func(c *Config) { c.Battle.MaxHP = 0 }, false},
		{"replay without dir", func(c *Config) { c.Replay.Dir = "" }, false},
		{"disabled replay without dir", func(c *Config) {
			c.Replay.Enabled = false
			c.Replay.Dir = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
