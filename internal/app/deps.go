package app

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/blackwell-systems/booklog/internal/cache"
	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/cover"
	"github.com/blackwell-systems/booklog/internal/store"
	"golang.org/x/text/language"
)

// newLogger builds the stderr logger from the log.* settings.
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func openStore(ctx context.Context) (store.Backend, error) {
	return store.Open(ctx, store.Options{
		Backend:       cfg.Store.Backend,
		Key:           cfg.Store.Key,
		DataDir:       cfg.Store.DataDir,
		RedisAddr:     cfg.Redis.Addr,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DB,
		SQLitePath:    cfg.SQLite.Path,
		GitHubOwner:   cfg.GitHub.Owner,
		GitHubRepo:    cfg.GitHub.Repo,
		GitHubPath:    cfg.GitHub.Path,
		GitHubBranch:  cfg.GitHub.Branch,
		GitHubToken:   cfg.GitHub.Token,
		GitHubAPIBase: cfg.GitHub.APIBase,
		Logger:        logger,
	})
}

func newOpenLibrary() *cover.OpenLibrary {
	return cover.NewOpenLibrary(cover.Config{
		BaseURL:  cfg.Cover.BaseURL,
		Size:     cover.Size(cfg.Cover.Size),
		MinBytes: cfg.Cover.MinBytes,
		Timeout:  cfg.Cover.Timeout,
	}, logger)
}

// openRepo wires the configured store and cover lookup into a repository.
// Call the returned func when done to release the store.
func openRepo(ctx context.Context) (*catalog.Repository, func(), error) {
	backend, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	covers := cover.NewCached(newOpenLibrary(), cfg.Cover.CacheTTL)
	repo := catalog.NewRepository(backend, covers,
		catalog.WithConflictCheck(cfg.Store.ConflictCheck),
		catalog.WithLogger(logger),
	)
	closeFn := func() {
		if err := backend.Close(); err != nil {
			logger.Warn("closing store", "backend", backend.Name(), "err", err)
		}
	}
	return repo, closeFn, nil
}

func cacheManager() *cache.Manager {
	return cache.New(cfg.Cover.CacheDir)
}

// viewLocale is the collation language for title sorting.
func viewLocale() language.Tag {
	tag, err := language.Parse(cfg.View.Locale)
	if err != nil {
		return language.English
	}
	return tag
}

// sortKey resolves a --sort flag, falling back to view.sort.
func sortKey(flag string) (catalog.SortKey, error) {
	if flag == "" {
		flag = cfg.View.Sort
	}
	return catalog.ParseSortKey(flag)
}
