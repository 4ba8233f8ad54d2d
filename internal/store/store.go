// Package store provides the record store backends. Each keeps the whole
// collection under one named entry and implements catalog.Store.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/metrics"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
	BackendGitHub = "github"
	BackendMemory = "memory"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendFile, BackendRedis, BackendSQLite, BackendGitHub, BackendMemory}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Key     string // named entry

	DataDir string // file

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SQLitePath string

	GitHubOwner   string
	GitHubRepo    string
	GitHubPath    string
	GitHubBranch  string
	GitHubToken   string
	GitHubAPIBase string

	Logger *slog.Logger
}

// Backend is a catalog.Store that may hold connections.
type Backend interface {
	catalog.Store
	io.Closer
	Name() string
}

// Open builds the backend named by opts.Backend. The result records
// store metrics for every read and write.
func Open(ctx context.Context, opts Options) (Backend, error) {
	if opts.Key == "" {
		opts.Key = "books"
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	var (
		b   Backend
		err error
	)
	switch opts.Backend {
	case "", BackendFile:
		b, err = NewFile(opts.DataDir, opts.Key)
	case BackendRedis:
		b, err = NewRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.Key)
	case BackendSQLite:
		b, err = NewSQLite(ctx, opts.SQLitePath, opts.Key)
	case BackendGitHub:
		b, err = NewGitHub(opts.GitHubOwner, opts.GitHubRepo, opts.GitHubPath, opts.GitHubBranch, opts.GitHubToken, opts.GitHubAPIBase)
	case BackendMemory:
		b = NewMemory()
	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", opts.Backend, err)
	}
	log.Debug("store opened", "backend", b.Name(), "key", opts.Key)
	return &observed{Backend: b, log: log}, nil
}

// observed wraps a backend with metrics and debug logging.
type observed struct {
	Backend
	log *slog.Logger
}

func (o *observed) ReadAll(ctx context.Context) (catalog.Snapshot, error) {
	snap, err := o.Backend.ReadAll(ctx)
	metrics.ObserveStore(o.Name(), "read", result(err))
	if err == nil {
		o.log.Debug("collection read", "backend", o.Name(), "books", len(snap.Books), "revision", snap.Revision)
	}
	return snap, err
}

func (o *observed) WriteAll(ctx context.Context, books []catalog.Book, expect string) (string, error) {
	rev, err := o.Backend.WriteAll(ctx, books, expect)
	metrics.ObserveStore(o.Name(), "write", result(err))
	if err == nil {
		o.log.Debug("collection written", "backend", o.Name(), "books", len(books), "revision", rev)
	}
	return rev, err
}

func result(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOK
	case errors.Is(err, catalog.ErrConflict):
		return metrics.ResultConflict
	default:
		return metrics.ResultError
	}
}

// persistErr wraps err as a catalog.ErrPersistence.
func persistErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, catalog.ErrPersistence, err)
}

// conflictErr reports a revision mismatch.
func conflictErr(expect, actual string) error {
	return fmt.Errorf("%w: expected revision %q, found %q", catalog.ErrConflict, expect, actual)
}

// decode parses a stored payload, mapping corrupt data to ErrPersistence.
func decode(data []byte) ([]catalog.Book, error) {
	books, err := catalog.Parse(data)
	if err != nil {
		return nil, persistErr("decoding collection", err)
	}
	return books, nil
}

func encode(books []catalog.Book) ([]byte, error) {
	data, err := catalog.Marshal(books)
	if err != nil {
		return nil, persistErr("encoding collection", err)
	}
	return data, nil
}
