package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/booklog/internal/config"
)

func TestDefaultPath(t *testing.T) {
	p := config.DefaultPath()
	if p == "" {
		t.Fatal("DefaultPath returned empty string")
	}
	if !strings.HasSuffix(p, filepath.Join("booklog", "config.yml")) {
		t.Errorf("DefaultPath = %q, should end with booklog/config.yml", p)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("BOOKLOG_CONFIG", "/etc/booklog.yml")
	if got := config.ResolvePath("/tmp/explicit.yml"); got != "/tmp/explicit.yml" {
		t.Errorf("ResolvePath(explicit) = %q", got)
	}
	if got := config.ResolvePath(""); got != "/etc/booklog.yml" {
		t.Errorf("ResolvePath(env) = %q", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "file" {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, "file")
	}
	if cfg.Store.Key != "books" {
		t.Errorf("Store.Key = %q, want %q", cfg.Store.Key, "books")
	}
	if cfg.Store.ConflictCheck {
		t.Error("Store.ConflictCheck = true, want false")
	}
	if cfg.Cover.Size != "M" || cfg.Cover.MinBytes != 1000 || cfg.Cover.Timeout != 5*time.Second {
		t.Errorf("Cover = %+v, want M / 1000 / 5s", cfg.Cover)
	}
	if cfg.Cover.CacheTTL != 0 {
		t.Errorf("Cover.CacheTTL = %v, want 0", cfg.Cover.CacheTTL)
	}
	if cfg.View.Sort != "dateRead" {
		t.Errorf("View.Sort = %q, want %q", cfg.View.Sort, "dateRead")
	}
	if cfg.Serve.Addr() != "127.0.0.1:5000" {
		t.Errorf("Serve.Addr() = %q, want %q", cfg.Serve.Addr(), "127.0.0.1:5000")
	}
	if cfg.SQLite.Path != filepath.Join(cfg.Store.DataDir, "booklog.db") {
		t.Errorf("SQLite.Path = %q, want it under the data dir", cfg.SQLite.Path)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := `store:
  backend: sqlite
  conflict_check: true
cover:
  size: l
  cache_ttl: 10m
view:
  sort: title
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BOOKLOG_SERVE_PORT", "7070")
	t.Setenv("GITHUB_TOKEN", "ghp_test")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || !cfg.Store.ConflictCheck {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Cover.Size != "L" {
		t.Errorf("Cover.Size = %q, want %q", cfg.Cover.Size, "L")
	}
	if cfg.Cover.CacheTTL != 10*time.Minute {
		t.Errorf("Cover.CacheTTL = %v, want 10m", cfg.Cover.CacheTTL)
	}
	if cfg.View.Sort != "title" {
		t.Errorf("View.Sort = %q, want %q", cfg.View.Sort, "title")
	}
	if cfg.Serve.Port != 7070 {
		t.Errorf("Serve.Port = %d, want 7070 from env", cfg.Serve.Port)
	}
	if cfg.GitHub.Token != "ghp_test" {
		t.Errorf("GitHub.Token = %q, want value from GITHUB_TOKEN", cfg.GitHub.Token)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("store:\n  backend: floppy\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Error("Load with unknown backend succeeded, want error")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Store: config.StoreConfig{Backend: "file", Key: "books"},
			Cover: config.CoverConfig{Size: "M", Timeout: time.Second},
			View:  config.ViewConfig{Sort: "rating"},
			Serve: config.ServeConfig{Host: "127.0.0.1", Port: 5000},
			Log:   config.LogConfig{Level: "info", Format: "text"},
		}
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("Validate(valid) = %v", err)
	}

	cases := map[string]func(*config.Config){
		"backend":     func(c *config.Config) { c.Store.Backend = "s3" },
		"empty key":   func(c *config.Config) { c.Store.Key = "" },
		"github repo": func(c *config.Config) { c.Store.Backend = "github" },
		"size":        func(c *config.Config) { c.Cover.Size = "XL" },
		"timeout":     func(c *config.Config) { c.Cover.Timeout = 0 },
		"sort":        func(c *config.Config) { c.View.Sort = "author" },
		"port":        func(c *config.Config) { c.Serve.Port = 70000 },
		"log level":   func(c *config.Config) { c.Log.Level = "trace" },
	}
	for name, edit := range cases {
		c := valid()
		edit(c)
		if err := c.Validate(); err == nil {
			t.Errorf("Validate with bad %s succeeded, want error", name)
		}
	}
}

func TestSave_RoundTrip(t *testing.T) {
	src, err := config.Load(filepath.Join(t.TempDir(), "none.yml"))
	if err != nil {
		t.Fatal(err)
	}
	src.Store.Backend = "redis"
	src.Cover.CacheTTL = time.Hour

	path := filepath.Join(t.TempDir(), "nested", "config.yml")
	if err := config.Save(src, path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load saved: %v", err)
	}
	if got.Store.Backend != "redis" || got.Cover.CacheTTL != time.Hour {
		t.Errorf("round trip lost values: %+v / %+v", got.Store, got.Cover)
	}
}
