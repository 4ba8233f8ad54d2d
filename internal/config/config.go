package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/booklog/internal/util"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "booklog", "config.yml")
}

// ResolvePath picks the config file: an explicit path, then
// $BOOKLOG_CONFIG, then DefaultPath.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return util.ExpandHome(explicit)
	}
	if p := os.Getenv("BOOKLOG_CONFIG"); p != "" {
		return util.ExpandHome(p)
	}
	return DefaultPath()
}

// Load reads the config from disk and the environment. A missing config
// file is not an error; every key has a default.
func Load(path string) (*Config, error) {
	// Optional .env files in the working directory.
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BOOKLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(ResolvePath(path))
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Resolve token from env (never stored in file).
	tokenEnv := cfg.GitHub.TokenEnv
	if tokenEnv == "" {
		tokenEnv = "GITHUB_TOKEN"
	}
	cfg.GitHub.Token = os.Getenv(tokenEnv)
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("BOOKLOG_GITHUB_TOKEN")
	}

	cfg.Store.DataDir = util.ExpandHome(cfg.Store.DataDir)
	cfg.Cover.CacheDir = util.ExpandHome(cfg.Cover.CacheDir)
	if cfg.SQLite.Path == "" {
		cfg.SQLite.Path = filepath.Join(cfg.Store.DataDir, "booklog.db")
	}
	cfg.SQLite.Path = util.ExpandHome(cfg.SQLite.Path)
	cfg.Cover.Size = strings.ToUpper(cfg.Cover.Size)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.key", "books")
	v.SetDefault("store.data_dir", defaultDataDir())
	v.SetDefault("store.conflict_check", false)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("sqlite.path", "")

	v.SetDefault("github.owner", "")
	v.SetDefault("github.repo", "")
	v.SetDefault("github.path", "books.json")
	v.SetDefault("github.branch", "")
	v.SetDefault("github.token_env", "GITHUB_TOKEN")
	v.SetDefault("github.api_base", "https://api.github.com")

	v.SetDefault("cover.base_url", "https://covers.openlibrary.org")
	v.SetDefault("cover.size", "M")
	v.SetDefault("cover.min_bytes", 1000)
	v.SetDefault("cover.timeout", 5*time.Second)
	v.SetDefault("cover.cache_ttl", time.Duration(0))
	v.SetDefault("cover.cache_dir", defaultCacheDir())

	v.SetDefault("view.sort", "dateRead")
	v.SetDefault("view.locale", "en")

	v.SetDefault("serve.host", "127.0.0.1")
	v.SetDefault("serve.port", 5000)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Save writes the config as YAML to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "booklog")
}

func defaultCacheDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "booklog", "covers")
}
