package site

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/isidrok/site/animation"
	"github.com/isidrok/site/content"
	"github.com/isidrok/site/throttle"
)

// Config holds all configuration for the site toolkit.
type Config struct {
	Site         string        `mapstructure:"site"`      // Canonical site URL (default "https://isidrok.com")
	DatabasePath string        `mapstructure:"database"`  // SQLite index path (default "data/content.db")
	CacheTTL     time.Duration `mapstructure:"cache_ttl"` // Entry cache TTL (default 5min)
	LogLevel     string        `mapstructure:"log_level"` // debug, info, warn, error (default "info")

	Collection CollectionConfig `mapstructure:"collection"`
	Animation  AnimationConfig  `mapstructure:"animation"`
	Dev        DevConfig        `mapstructure:"dev"`
}

// CollectionConfig locates the blog posts.
type CollectionConfig struct {
	Base    string `mapstructure:"base"`    // default "./src/posts"
	Pattern string `mapstructure:"pattern"` // default "**/*.{md,mdx}"
}

// AnimationConfig holds the typewriter timings.
type AnimationConfig struct {
	Speed      time.Duration `mapstructure:"speed"`       // per character (default 100ms)
	StartDelay time.Duration `mapstructure:"start_delay"` // before the first character (default 200ms)
	Counter    string        `mapstructure:"counter"`     // runes, utf16 or graphemes (default "runes")
}

// Calculator returns the animation calculator described by c.
func (c AnimationConfig) Calculator() (animation.Calculator, error) {
	count, err := animation.CounterByName(c.Counter)
	if err != nil {
		return animation.Calculator{}, err
	}
	return animation.Calculator{Speed: c.Speed, StartDelay: c.StartDelay, Count: count}, nil
}

// DevConfig configures the development server and content watcher.
type DevConfig struct {
	Addr            string        `mapstructure:"addr"`              // default ":4321"
	FrameInterval   time.Duration `mapstructure:"frame_interval"`    // default 1s/60
	ThrottleLimit   time.Duration `mapstructure:"throttle_limit"`    // default 300ms
	ResetAfterLimit bool          `mapstructure:"reset_after_limit"` // end reload cooldown after ThrottleLimit instead of next frame
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	c := Config{
		Animation: AnimationConfig{
			Speed:      animation.DefaultSpeed,
			StartDelay: animation.DefaultStartDelay,
		},
		Dev: DevConfig{ThrottleLimit: 300 * time.Millisecond},
	}
	c.setDefaults()
	return c
}

// setDefaults fills fields whose zero value is unusable. Zero animation
// timings and a zero throttle limit are valid settings and stay as given.
func (c *Config) setDefaults() {
	if c.Site == "" {
		c.Site = "https://isidrok.com"
	}
	c.Site = strings.TrimSuffix(c.Site, "/")
	if c.DatabasePath == "" {
		c.DatabasePath = "data/content.db"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 5 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Collection.Base == "" {
		c.Collection.Base = content.DefaultBase
	}
	if c.Collection.Pattern == "" {
		c.Collection.Pattern = content.DefaultPattern
	}
	if c.Animation.Counter == "" {
		c.Animation.Counter = "runes"
	}
	if c.Dev.Addr == "" {
		c.Dev.Addr = ":4321"
	}
	if c.Dev.FrameInterval == 0 {
		c.Dev.FrameInterval = throttle.DefaultFrameInterval
	}
}

// Validate reports configuration values that cannot be used.
func (c Config) Validate() error {
	u, err := url.Parse(c.Site)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("site: invalid site url %q", c.Site)
	}
	if _, err := c.Animation.Calculator(); err != nil {
		return fmt.Errorf("site: %w", err)
	}
	if c.Animation.Speed < 0 || c.Animation.StartDelay < 0 {
		return errors.New("site: animation timings must not be negative")
	}
	if c.Dev.FrameInterval < 0 {
		return errors.New("site: dev.frame_interval must not be negative")
	}
	return nil
}

// LoadConfig reads configuration from defaults, an optional YAML file and
// SITE_* environment variables, in increasing order of precedence. An empty
// path looks for site.yaml in the working directory; a missing default file
// is not an error.
func LoadConfig(path string) (Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("site", defaults.Site)
	v.SetDefault("database", defaults.DatabasePath)
	v.SetDefault("cache_ttl", defaults.CacheTTL)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("collection.base", defaults.Collection.Base)
	v.SetDefault("collection.pattern", defaults.Collection.Pattern)
	v.SetDefault("animation.speed", defaults.Animation.Speed)
	v.SetDefault("animation.start_delay", defaults.Animation.StartDelay)
	v.SetDefault("animation.counter", defaults.Animation.Counter)
	v.SetDefault("dev.addr", defaults.Dev.Addr)
	v.SetDefault("dev.frame_interval", defaults.Dev.FrameInterval)
	v.SetDefault("dev.throttle_limit", defaults.Dev.ThrottleLimit)
	v.SetDefault("dev.reset_after_limit", defaults.Dev.ResetAfterLimit)

	v.SetEnvPrefix("SITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("site")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("site: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("site: decode config: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithLogger sets the logger used by the App (default: no-op).
func WithLogger(log *zap.Logger) Option {
	return func(a *App) {
		a.Log = log
	}
}

// WithFrames sets the frame source that paces content reloads.
func WithFrames(f throttle.Frames) Option {
	return func(a *App) {
		a.frames = f
	}
}
