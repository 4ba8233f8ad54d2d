package app

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/blackwell-systems/booklog/internal/cache"
	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/config"
	"github.com/blackwell-systems/booklog/internal/form"
	"github.com/blackwell-systems/booklog/internal/store"
	"github.com/fatih/color"
	"github.com/spf13/pflag"
)

func sampleBooks() []catalog.Book {
	return []catalog.Book{
		{ID: "3f2a9c1e-0000-4000-8000-000000000001", Title: "Dune", Author: "Frank Herbert", Rating: 5, Notes: "Spice.", DateRead: "2024-03-01"},
		{ID: "3f2b0000-0000-4000-8000-000000000002", Title: "Emma", Author: "Jane Austen", Rating: 4, Notes: "Matchmaking.", DateRead: "2023-11-20"},
		{ID: "a1000000-0000-4000-8000-000000000003", Title: "Ubik", Author: "Philip K. Dick", Rating: 3, Notes: "Reality.", DateRead: "2022-06-15"},
	}
}

func seededRepo(t *testing.T) *catalog.Repository {
	t.Helper()
	repo := catalog.NewRepository(store.NewMemory(), nil)
	if _, err := repo.Import(context.Background(), sampleBooks()); err != nil {
		t.Fatalf("seeding repository: %v", err)
	}
	return repo
}

func TestShortID(t *testing.T) {
	tests := map[string]string{
		"3f2a9c1e-0000-4000-8000-000000000001": "3f2a9c1e",
		"abc":                                  "abc",
		"":                                     "",
	}
	for in, want := range tests {
		if got := shortID(in); got != want {
			t.Errorf("shortID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCountLine(t *testing.T) {
	if got := countLine(1); got != "1 book in your collection" {
		t.Errorf("countLine(1) = %q", got)
	}
	if got := countLine(0); got != "0 books in your collection" {
		t.Errorf("countLine(0) = %q", got)
	}
	if got := countLine(12); got != "12 books in your collection" {
		t.Errorf("countLine(12) = %q", got)
	}
}

func TestPrintBooks(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	var buf bytes.Buffer
	printBooks(&buf, sampleBooks()[:2])

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	for _, want := range []string{"3f2a9c1e", "★★★★★", "2024-03-01", "Dune", "by Frank Herbert"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
	if strings.Contains(lines[0], "0000-4000") {
		t.Errorf("line %q shows the full id", lines[0])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, sampleBooks()); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	got, err := catalog.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("output does not parse: %v", err)
	}
	if len(got) != 3 || got[1].Title != "Emma" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestBookFlagsInput(t *testing.T) {
	f := bookFlags{
		title:    "Dune",
		author:   "Frank Herbert",
		rating:   "5",
		notes:    `First part.\nSecond part.`,
		dateRead: "2024-03-01",
	}
	in := f.input()
	if in.Notes != "First part.\nSecond part." {
		t.Errorf("Notes = %q, want an escaped newline turned into a real one", in.Notes)
	}
	if in.Title != "Dune" || in.Rating != "5" || in.DateRead != "2024-03-01" {
		t.Errorf("input() = %+v", in)
	}
}

func TestBookFlagsOverlay(t *testing.T) {
	var f bookFlags
	fs := pflag.NewFlagSet("edit", pflag.ContinueOnError)
	f.register(fs)
	if err := fs.Parse([]string{"--isbn=", "--rating", "2"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	base := form.Input{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", Rating: "5", Notes: "Spice.", DateRead: "2024-03-01"}
	got := f.overlay(fs, base)
	if got.ISBN != "" {
		t.Errorf("ISBN = %q, want an explicit empty flag to clear it", got.ISBN)
	}
	if got.Rating != "2" {
		t.Errorf("Rating = %q, want 2", got.Rating)
	}
	if got.Title != "Dune" || got.Author != "Frank Herbert" || got.Notes != "Spice." || got.DateRead != "2024-03-01" {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestListOptionsView(t *testing.T) {
	saved := cfg
	cfg = &config.Config{View: config.ViewConfig{Sort: "dateRead", Locale: "en"}}
	t.Cleanup(func() { cfg = saved })

	v, err := listOptions{sort: "rating", query: "dune", minRating: "4"}.view()
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if v.MinRating != 4 || v.Sort != catalog.SortByRating || v.Query != "dune" {
		t.Errorf("view = %+v", v)
	}
	got := v.Apply(sampleBooks())
	if len(got) != 1 || got[0].Title != "Dune" {
		t.Errorf("Apply = %v", got)
	}

	for _, bad := range []string{"6", "-1", "four"} {
		if _, err := (listOptions{minRating: bad}).view(); err == nil {
			t.Errorf("view(min-rating %q) succeeded, want error", bad)
		}
	}
}

func TestConfirmed(t *testing.T) {
	tests := map[string]bool{
		"y\n":     true,
		"YES\n":   true,
		"  yes  ": true,
		"n\n":     false,
		"\n":      false,
		"":        false,
		"yep\n":   false,
	}
	for in, want := range tests {
		if got := confirmed(strings.NewReader(in)); got != want {
			t.Errorf("confirmed(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestResolveBook(t *testing.T) {
	ctx := context.Background()
	repo := seededRepo(t)

	b, err := resolveBook(ctx, repo, "a1000000-0000-4000-8000-000000000003")
	if err != nil || b.Title != "Ubik" {
		t.Errorf("full id: got %q, %v", b.Title, err)
	}

	b, err = resolveBook(ctx, repo, "a1")
	if err != nil || b.Title != "Ubik" {
		t.Errorf("unique prefix: got %q, %v", b.Title, err)
	}

	b, err = resolveBook(ctx, repo, " 3f2a ")
	if err != nil || b.Title != "Dune" {
		t.Errorf("trimmed prefix: got %q, %v", b.Title, err)
	}

	if _, err := resolveBook(ctx, repo, "3f2"); err == nil || !strings.Contains(err.Error(), "matches 2 books") {
		t.Errorf("ambiguous prefix: err = %v", err)
	}

	if _, err := resolveBook(ctx, repo, "zzz"); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json")
	log.Info("hidden")
	log.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("want a JSON record, got %s", out)
	}

	buf.Reset()
	log = newLogger(&buf, "bogus", "text")
	if !log.Enabled(context.Background(), slog.LevelInfo) || log.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("unknown level should fall back to info")
	}
	log.Info("plain")
	if !strings.Contains(buf.String(), "msg=plain") {
		t.Errorf("want a text record, got %s", buf.String())
	}
}

func TestDownloadCovers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("image bytes for " + r.URL.Path))
	}))
	defer srv.Close()

	cm := cache.New(t.TempDir())
	if _, _, err := cm.Store("cached", strings.NewReader("old")); err != nil {
		t.Fatalf("pre-caching: %v", err)
	}

	books := []catalog.Book{
		{ID: "fetch", Title: "Fetch", CoverURL: srv.URL + "/fetch.jpg"},
		{ID: "missing", Title: "Missing", CoverURL: srv.URL + "/missing.jpg"},
		{ID: "nocover", Title: "No cover"},
		{ID: "cached", Title: "Cached", CoverURL: srv.URL + "/cached.jpg"},
	}

	n, err := downloadCovers(context.Background(), cm, books, false)
	if err != nil {
		t.Fatalf("downloadCovers: %v", err)
	}
	if n != 1 {
		t.Errorf("downloaded %d, want 1", n)
	}
	if !cm.Exists("fetch") {
		t.Error("fetch cover not cached")
	}
	if cm.Exists("missing") || cm.Exists("nocover") {
		t.Error("cached a cover that does not exist")
	}
	data, _ := os.ReadFile(cm.Path("cached"))
	if string(data) != "old" {
		t.Errorf("already cached cover was replaced without force: %q", data)
	}

	n, err = downloadCovers(context.Background(), cm, books, true)
	if err != nil {
		t.Fatalf("downloadCovers(force): %v", err)
	}
	if n != 2 {
		t.Errorf("forced download count = %d, want 2", n)
	}
	data, _ = os.ReadFile(cm.Path("cached"))
	if string(data) != "image bytes for /cached.jpg" {
		t.Errorf("forced download kept the old image: %q", data)
	}
}
