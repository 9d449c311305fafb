package site

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isidrok/site/animation"
	"github.com/isidrok/site/content"
	"github.com/isidrok/site/throttle"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "https://isidrok.com", cfg.Site)
	assert.Equal(t, "data/content.db", cfg.DatabasePath)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, content.DefaultBase, cfg.Collection.Base)
	assert.Equal(t, content.DefaultPattern, cfg.Collection.Pattern)
	assert.Equal(t, animation.DefaultSpeed, cfg.Animation.Speed)
	assert.Equal(t, animation.DefaultStartDelay, cfg.Animation.StartDelay)
	assert.Equal(t, "runes", cfg.Animation.Counter)
	assert.Equal(t, ":4321", cfg.Dev.Addr)
	assert.Equal(t, throttle.DefaultFrameInterval, cfg.Dev.FrameInterval)
	assert.Equal(t, 300*time.Millisecond, cfg.Dev.ThrottleLimit)
	assert.False(t, cfg.Dev.ResetAfterLimit)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
site: https://example.com/
database: /tmp/index.db
collection:
  base: posts
animation:
  speed: 50ms
  counter: graphemes
dev:
  throttle_limit: 1s
  reset_after_limit: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", cfg.Site, "trailing slash is trimmed")
	assert.Equal(t, "/tmp/index.db", cfg.DatabasePath)
	assert.Equal(t, "posts", cfg.Collection.Base)
	assert.Equal(t, content.DefaultPattern, cfg.Collection.Pattern)
	assert.Equal(t, 50*time.Millisecond, cfg.Animation.Speed)
	assert.Equal(t, animation.DefaultStartDelay, cfg.Animation.StartDelay)
	assert.Equal(t, "graphemes", cfg.Animation.Counter)
	assert.Equal(t, time.Second, cfg.Dev.ThrottleLimit)
	assert.True(t, cfg.Dev.ResetAfterLimit)
}

func TestLoadConfigKeepsZeroDurations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
animation:
  speed: 0s
  start_delay: 0s
dev:
  throttle_limit: 0s
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.Animation.Speed)
	assert.Zero(t, cfg.Animation.StartDelay)
	assert.Zero(t, cfg.Dev.ThrottleLimit)

	a := New(cfg)
	assert.Zero(t, a.Config.Animation.Speed)
	assert.Zero(t, a.Config.Animation.StartDelay)
	assert.Zero(t, a.Config.Dev.ThrottleLimit)
	calc, err := a.Config.Animation.Calculator()
	require.NoError(t, err)
	assert.Zero(t, calc.Duration("hello"))
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dev:\n  addr: \":8000\"\n"), 0o644))
	t.Setenv("SITE_DEV_ADDR", ":9000")
	t.Setenv("SITE_ANIMATION_START_DELAY", "1s")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Dev.Addr)
	assert.Equal(t, time.Second, cfg.Animation.StartDelay)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative site", func(c *Config) { c.Site = "isidrok.com" }, true},
		{"unknown counter", func(c *Config) { c.Animation.Counter = "bytes" }, true},
		{"zero animation", func(c *Config) { c.Animation.Speed, c.Animation.StartDelay = 0, 0 }, false},
		{"negative speed", func(c *Config) { c.Animation.Speed = -time.Millisecond }, true},
		{"negative frame interval", func(c *Config) { c.Dev.FrameInterval = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAnimationConfigCalculator(t *testing.T) {
	calc, err := AnimationConfig{Speed: 10 * time.Millisecond, StartDelay: 5 * time.Millisecond, Counter: "utf16"}.Calculator()
	require.NoError(t, err)

	assert.Equal(t, 25*time.Millisecond, calc.Duration("\U0001F436"))

	_, err = AnimationConfig{Counter: "bytes"}.Calculator()
	assert.ErrorIs(t, err, animation.ErrUnknownCounter)
}
