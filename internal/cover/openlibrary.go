package cover

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blackwell-systems/booklog/internal/metrics"
)

// Defaults for the Open Library catalog.
const (
	DefaultBaseURL  = "https://covers.openlibrary.org"
	DefaultMinBytes = 1000
	DefaultTimeout  = 5 * time.Second
)

// Config configures an OpenLibrary resolver. Zero values take the defaults.
type Config struct {
	BaseURL  string
	Size     Size
	MinBytes int64
	Timeout  time.Duration
}

// OpenLibrary resolves covers against covers.openlibrary.org.
//
// The catalog answers every ISBN with an image; ISBNs it does not know get
// a tiny placeholder. A response is only treated as a real cover when its
// declared Content-Length is above MinBytes.
type OpenLibrary struct {
	baseURL  string
	size     Size
	minBytes int64
	http     *http.Client
	log      *slog.Logger
}

// NewOpenLibrary returns a resolver for cfg. log may be nil.
func NewOpenLibrary(cfg Config, log *slog.Logger) *OpenLibrary {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Size == "" {
		cfg.Size = DefaultSize
	}
	if cfg.MinBytes <= 0 {
		cfg.MinBytes = DefaultMinBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &OpenLibrary{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		size:     cfg.Size,
		minBytes: cfg.MinBytes,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}
}

// URL builds the catalog URL for isbn at the given size.
func (o *OpenLibrary) URL(isbn string, size Size) string {
	if size == "" {
		size = o.size
	}
	return o.baseURL + "/b/isbn/" + url.PathEscape(strings.TrimSpace(isbn)) + "-" + string(size) + ".jpg"
}

// Resolve looks up isbn at the configured size.
func (o *OpenLibrary) Resolve(ctx context.Context, isbn string) (string, bool) {
	return o.ResolveSize(ctx, isbn, o.size)
}

// ResolveSize looks up isbn at a specific size. Every failure, including
// cancellation and timeouts, is reported as no cover.
func (o *OpenLibrary) ResolveSize(ctx context.Context, isbn string, size Size) (string, bool) {
	if strings.TrimSpace(isbn) == "" {
		return "", false
	}
	u := o.URL(isbn, size)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		o.log.Debug("cover lookup failed", "isbn", isbn, "error", err)
		metrics.ObserveCover(metrics.ResultError)
		return "", false
	}
	resp, err := o.http.Do(req)
	if err != nil {
		o.log.Debug("cover lookup failed", "isbn", isbn, "error", err)
		metrics.ObserveCover(metrics.ResultError)
		return "", false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		o.log.Debug("cover lookup rejected", "isbn", isbn, "status", resp.StatusCode)
		metrics.ObserveCover(metrics.ResultNone)
		return "", false
	}
	// ContentLength is -1 when the header is missing.
	if resp.ContentLength <= o.minBytes {
		o.log.Debug("no cover in catalog", "isbn", isbn, "content_length", resp.ContentLength)
		metrics.ObserveCover(metrics.ResultNone)
		return "", false
	}

	metrics.ObserveCover(metrics.ResultFound)
	return u, true
}
