// Package ingest fetches import files from a local path, stdin, an HTTP
// URL or a GitHub repository.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/blackwell-systems/booklog/internal/github"
)

// MaxSize caps how much of an import is read.
const MaxSize = 32 << 20

// ErrTooLarge is returned when the input exceeds MaxSize.
var ErrTooLarge = errors.New("import file too large")

// Source holds a resolved input ready for reading.
type Source struct {
	// Name is the file name without directory. Its extension picks the
	// import format.
	Name string
	// Open returns a new ReadCloser.
	Open func(ctx context.Context) (io.ReadCloser, error)
}

// Options configures Resolve.
type Options struct {
	GitHubToken   string
	GitHubAPIBase string
	// Stdin is read for the input "-". Defaults to os.Stdin.
	Stdin      io.Reader
	HTTPClient *http.Client
}

// githubPathRe matches "github:owner/repo@ref:path/to/file"; "@ref" is optional.
var githubPathRe = regexp.MustCompile(`^github:([^/]+)/([^@:]+)(?:@([^:]+))?:(.+)$`)

// Resolve determines the type of input and returns a Source.
// Supported formats:
//
//	-                              stdin
//	/path/to/books.json            local file
//	https://example.com/books.json HTTP URL
//	github:owner/repo@ref:path     file in a GitHub repository
func Resolve(input string, opts Options) (*Source, error) {
	switch {
	case input == "-":
		return resolveStdin(opts.Stdin), nil
	case strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://"):
		return resolveHTTP(input, opts.HTTPClient), nil
	case strings.HasPrefix(input, "github:"):
		return resolveGitHub(input, opts.GitHubToken, opts.GitHubAPIBase)
	default:
		return resolveFile(input)
	}
}

// Read resolves input and reads it whole.
func Read(ctx context.Context, input string, opts Options) (name string, data []byte, err error) {
	src, err := Resolve(input, opts)
	if err != nil {
		return "", nil, err
	}
	rc, err := src.Open(ctx)
	if err != nil {
		return "", nil, err
	}
	defer func() { _ = rc.Close() }()

	data, err = io.ReadAll(io.LimitReader(rc, MaxSize+1))
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", input, err)
	}
	if len(data) > MaxSize {
		return "", nil, fmt.Errorf("%s: %w", input, ErrTooLarge)
	}
	return src.Name, data, nil
}

func resolveStdin(r io.Reader) *Source {
	if r == nil {
		r = os.Stdin
	}
	return &Source{
		Name: "-",
		Open: func(context.Context) (io.ReadCloser, error) { return io.NopCloser(r), nil },
	}
}

func resolveFile(path string) (*Source, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%q is a directory", path)
	}
	return &Source{
		Name: filepath.Base(path),
		Open: func(context.Context) (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

func resolveHTTP(url string, client *http.Client) *Source {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Source{
		Name: guessFilenameFromURL(url),
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			if resp.StatusCode != http.StatusOK {
				_ = resp.Body.Close()
				return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
			}
			return resp.Body, nil
		},
	}
}

func resolveGitHub(input, token, apiBase string) (*Source, error) {
	m := githubPathRe.FindStringSubmatch(input)
	if m == nil {
		return nil, fmt.Errorf("invalid github: path %q, expected github:owner/repo@ref:path/to/file", input)
	}
	owner, repo, ref, path := m[1], m[2], m[3], m[4]
	gh := github.New(token, apiBase)

	return &Source{
		Name: filepath.Base(path),
		Open: func(ctx context.Context) (io.ReadCloser, error) {
			data, _, err := gh.GetFileContent(ctx, owner, repo, path, ref)
			if err != nil {
				return nil, fmt.Errorf("GitHub contents %s: %w", path, err)
			}
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}, nil
}

func guessFilenameFromURL(rawURL string) string {
	if idx := strings.IndexAny(rawURL, "?#"); idx >= 0 {
		rawURL = rawURL[:idx]
	}
	rawURL = strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	slash := strings.Index(rawURL, "/")
	if slash < 0 {
		return "download"
	}
	base := filepath.Base(rawURL[slash:])
	if base == "" || base == "." || base == "/" {
		return "download"
	}
	return base
}
