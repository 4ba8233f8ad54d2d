// Package httpapi serves the collection over a local REST API at
// /api/books, plus cover lookups, a health check and Prometheus metrics.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/cover"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/text/language"
)

// Books is the part of the repository the API needs.
type Books interface {
	List(ctx context.Context) ([]catalog.Book, error)
	Get(ctx context.Context, id string) (catalog.Book, error)
	Create(ctx context.Context, f catalog.Fields) (catalog.Book, error)
	Update(ctx context.Context, id string, f catalog.Fields) (catalog.Book, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// CoverFinder resolves a cover at a particular size.
type CoverFinder interface {
	ResolveSize(ctx context.Context, isbn string, size cover.Size) (string, bool)
}

// Options tunes a Server. Zero values take defaults.
type Options struct {
	DefaultSort catalog.SortKey
	Locale      language.Tag
	Logger      *slog.Logger
}

// Server is the HTTP API.
type Server struct {
	books  Books
	covers CoverFinder
	sort   catalog.SortKey
	locale language.Tag
	log    *slog.Logger
	engine *gin.Engine
}

const shutdownTimeout = 5 * time.Second

// New builds the API. covers may be nil, in which case /api/covers is 404.
func New(books Books, covers CoverFinder, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.DefaultSort == "" {
		opts.DefaultSort = catalog.DefaultSort
	}

	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		books:  books,
		covers: covers,
		sort:   opts.DefaultSort,
		locale: opts.Locale,
		log:    opts.Logger,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery(), accessLog(s.log))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.engine.Group("/api")
	s.registerBooks(api)
	if s.covers != nil {
		api.GET("/covers/:isbn", s.getCover)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("http api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
