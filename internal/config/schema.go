package config

import (
	"fmt"
	"slices"
	"time"
)

// Config is the top-level booklog configuration.
type Config struct {
	Store  StoreConfig  `mapstructure:"store" yaml:"store"`
	Redis  RedisConfig  `mapstructure:"redis" yaml:"redis"`
	SQLite SQLiteConfig `mapstructure:"sqlite" yaml:"sqlite"`
	GitHub GitHubConfig `mapstructure:"github" yaml:"github"`
	Cover  CoverConfig  `mapstructure:"cover" yaml:"cover"`
	View   ViewConfig   `mapstructure:"view" yaml:"view"`
	Serve  ServeConfig  `mapstructure:"serve" yaml:"serve"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
}

// StoreConfig selects where the collection lives.
type StoreConfig struct {
	Backend       string `mapstructure:"backend" yaml:"backend"` // file, redis, sqlite, github, memory
	Key           string `mapstructure:"key" yaml:"key"`
	DataDir       string `mapstructure:"data_dir" yaml:"data_dir"`
	ConflictCheck bool   `mapstructure:"conflict_check" yaml:"conflict_check"`
}

// RedisConfig holds the redis backend connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" yaml:"addr"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

// SQLiteConfig holds the sqlite backend settings.
type SQLiteConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// GitHubConfig holds the github backend settings.
type GitHubConfig struct {
	Owner    string `mapstructure:"owner" yaml:"owner"`
	Repo     string `mapstructure:"repo" yaml:"repo"`
	Path     string `mapstructure:"path" yaml:"path"`
	Branch   string `mapstructure:"branch" yaml:"branch,omitempty"`
	TokenEnv string `mapstructure:"token_env" yaml:"token_env"`
	APIBase  string `mapstructure:"api_base" yaml:"api_base"`
	Token    string `mapstructure:"-" yaml:"-"` // resolved at runtime, never written
}

// CoverConfig configures cover lookups and the local image cache.
type CoverConfig struct {
	BaseURL  string        `mapstructure:"base_url" yaml:"base_url"`
	Size     string        `mapstructure:"size" yaml:"size"`
	MinBytes int64         `mapstructure:"min_bytes" yaml:"min_bytes"`
	Timeout  time.Duration `mapstructure:"timeout" yaml:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	CacheDir string        `mapstructure:"cache_dir" yaml:"cache_dir"`
}

// ViewConfig holds list display defaults.
type ViewConfig struct {
	Sort   string `mapstructure:"sort" yaml:"sort"`
	Locale string `mapstructure:"locale" yaml:"locale"`
}

// ServeConfig holds the HTTP API listen address.
type ServeConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Addr is host:port.
func (s ServeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`   // debug, info, warn, error
	Format string `mapstructure:"format" yaml:"format"` // text or json
}

var (
	validBackends = []string{"file", "redis", "sqlite", "github", "memory"}
	validSizes    = []string{"S", "M", "L"}
	validSorts    = []string{"rating", "dateRead", "title"}
	validLevels   = []string{"debug", "info", "warn", "error"}
	validFormats  = []string{"text", "json"}
)

// Validate rejects settings no component can honour.
func (c *Config) Validate() error {
	if !slices.Contains(validBackends, c.Store.Backend) {
		return fmt.Errorf("store.backend %q is not one of %v", c.Store.Backend, validBackends)
	}
	if c.Store.Key == "" {
		return fmt.Errorf("store.key must not be empty")
	}
	if c.Store.Backend == "github" && (c.GitHub.Owner == "" || c.GitHub.Repo == "") {
		return fmt.Errorf("the github backend needs github.owner and github.repo")
	}
	if !slices.Contains(validSizes, c.Cover.Size) {
		return fmt.Errorf("cover.size %q is not one of %v", c.Cover.Size, validSizes)
	}
	if c.Cover.Timeout <= 0 {
		return fmt.Errorf("cover.timeout must be positive")
	}
	if c.Cover.CacheTTL < 0 {
		return fmt.Errorf("cover.cache_ttl must not be negative")
	}
	if !slices.Contains(validSorts, c.View.Sort) {
		return fmt.Errorf("view.sort %q is not one of %v", c.View.Sort, validSorts)
	}
	if c.Serve.Port <= 0 || c.Serve.Port > 65535 {
		return fmt.Errorf("serve.port %d is out of range", c.Serve.Port)
	}
	if !slices.Contains(validLevels, c.Log.Level) {
		return fmt.Errorf("log.level %q is not one of %v", c.Log.Level, validLevels)
	}
	if !slices.Contains(validFormats, c.Log.Format) {
		return fmt.Errorf("log.format %q is not one of %v", c.Log.Format, validFormats)
	}
	return nil
}
