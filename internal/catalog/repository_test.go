package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/store"
)

// stubCovers answers from a fixed table and records every lookup.
type stubCovers struct {
	mu     sync.Mutex
	covers map[string]string
	calls  []string
}

func (s *stubCovers) Resolve(_ context.Context, isbn string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, isbn)
	url, ok := s.covers[isbn]
	return url, ok
}

func (s *stubCovers) set(isbn, url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.covers[isbn] = url
}

// fakeClock advances one minute per call.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

const (
	duneISBN = "9780441013593"
	duneURL  = "https://covers.example/dune-M.jpg"
)

func newRepo(t *testing.T, opts ...catalog.Option) (*catalog.Repository, *store.Memory, *stubCovers) {
	t.Helper()
	mem := store.NewMemory()
	covers := &stubCovers{covers: map[string]string{duneISBN: duneURL}}
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	opts = append([]catalog.Option{
		catalog.WithClock(clock.Now),
		catalog.WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
	}, opts...)
	return catalog.NewRepository(mem, covers, opts...), mem, covers
}

func duneFields() catalog.Fields {
	return catalog.Fields{
		Title:    "Dune",
		Author:   "Frank Herbert",
		ISBN:     duneISBN,
		Rating:   5,
		Notes:    "Spice.",
		DateRead: "2024-03-01",
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()

	created, err := repo.Create(ctx, duneFields())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "id-1" {
		t.Errorf("ID = %q, want %q", created.ID, "id-1")
	}
	if created.CoverURL != duneURL {
		t.Errorf("CoverURL = %q, want %q", created.CoverURL, duneURL)
	}
	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("CreatedAt %v != UpdatedAt %v on a new book", created.CreatedAt, created.UpdatedAt)
	}
	if created.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt location = %v, want UTC", created.CreatedAt.Location())
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != created {
		t.Errorf("Get = %+v, want %+v", got, created)
	}
}

func TestRepository_CreateWithoutISBNSkipsLookup(t *testing.T) {
	repo, _, covers := newRepo(t)
	f := duneFields()
	f.ISBN = "  "

	b, err := repo.Create(context.Background(), f)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.CoverURL != "" {
		t.Errorf("CoverURL = %q, want empty", b.CoverURL)
	}
	if len(covers.calls) != 0 {
		t.Errorf("cover lookups = %v, want none", covers.calls)
	}
}

func TestRepository_CreateUnknownCover(t *testing.T) {
	repo, _, _ := newRepo(t)
	f := duneFields()
	f.ISBN = "0000000000"

	b, err := repo.Create(context.Background(), f)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.CoverURL != "" {
		t.Errorf("CoverURL = %q, want empty when catalog has no cover", b.CoverURL)
	}
}

func TestRepository_GetMissing(t *testing.T) {
	repo, _, _ := newRepo(t)
	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRepository_UpdateIdentity(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()
	created, _ := repo.Create(ctx, duneFields())

	f := duneFields()
	f.Rating = 4
	f.Notes = "Better on reread."
	updated, err := repo.Update(ctx, created.ID, f)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("ID changed from %q to %q", created.ID, updated.ID)
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", created.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("UpdatedAt %v not after %v", updated.UpdatedAt, created.UpdatedAt)
	}
	if updated.Rating != 4 || updated.Notes != "Better on reread." {
		t.Errorf("fields not replaced: %+v", updated)
	}
}

func TestRepository_UpdateNeverMovesUpdatedAtBackwards(t *testing.T) {
	mem := store.NewMemory()
	future := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	seed := []catalog.Book{{ID: "x", Title: "T", Author: "A", Rating: 3, Notes: "n", DateRead: "2024-01-01", CreatedAt: future, UpdatedAt: future}}
	if _, err := mem.WriteAll(context.Background(), seed, ""); err != nil {
		t.Fatal(err)
	}
	repo := catalog.NewRepository(mem, nil, catalog.WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}))

	got, err := repo.Update(context.Background(), "x", catalog.Fields{Title: "T2", Author: "A", Rating: 3, Notes: "n", DateRead: "2024-01-01"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Errorf("UpdatedAt %v before CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestRepository_UpdateMissing(t *testing.T) {
	repo, _, covers := newRepo(t)
	_, err := repo.Update(context.Background(), "nope", duneFields())
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
	if len(covers.calls) != 0 {
		t.Errorf("cover lookups for missing book = %v, want none", covers.calls)
	}
}

func TestRepository_UpdateCoverConsistency(t *testing.T) {
	repo, _, covers := newRepo(t)
	ctx := context.Background()
	b, _ := repo.Create(ctx, duneFields())

	// Empty ISBN keeps the previous cover.
	f := duneFields()
	f.ISBN = ""
	got, err := repo.Update(ctx, b.ID, f)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.CoverURL != duneURL {
		t.Errorf("CoverURL after clearing ISBN = %q, want preserved %q", got.CoverURL, duneURL)
	}

	// An ISBN with no catalog cover clears it.
	f.ISBN = "0000000000"
	got, _ = repo.Update(ctx, b.ID, f)
	if got.CoverURL != "" {
		t.Errorf("CoverURL for ISBN without cover = %q, want empty", got.CoverURL)
	}

	// The lookup is repeated on every save.
	covers.set("0000000000", "https://covers.example/late.jpg")
	got, _ = repo.Update(ctx, b.ID, f)
	if got.CoverURL != "https://covers.example/late.jpg" {
		t.Errorf("CoverURL after catalog gained a cover = %q", got.CoverURL)
	}
}

func TestRepository_DeleteIdempotent(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()
	b, _ := repo.Create(ctx, duneFields())

	removed, err := repo.Delete(ctx, b.ID)
	if err != nil || !removed {
		t.Fatalf("Delete = %v, %v; want true, nil", removed, err)
	}
	removed, err = repo.Delete(ctx, b.ID)
	if err != nil || removed {
		t.Errorf("second Delete = %v, %v; want false, nil", removed, err)
	}
	if _, err := repo.Get(ctx, b.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("Get after Delete error = %v, want ErrNotFound", err)
	}
}

func TestRepository_IDsNeverReused(t *testing.T) {
	mem := store.NewMemory()
	// A generator that repeats itself must not produce duplicate IDs.
	seq := []string{"a", "a", "b", "a", "b", "c"}
	i := 0
	repo := catalog.NewRepository(mem, nil, catalog.WithIDGenerator(func() string {
		id := seq[i%len(seq)]
		i++
		return id
	}))
	ctx := context.Background()

	seen := map[string]bool{}
	for range 3 {
		b, err := repo.Create(ctx, duneFields())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if seen[b.ID] {
			t.Fatalf("duplicate ID %q", b.ID)
		}
		seen[b.ID] = true
	}
}

func TestRepository_Search(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()
	for _, f := range []catalog.Fields{
		{Title: "Dune", Author: "Frank Herbert", Rating: 5, Notes: "n", DateRead: "2024-01-01"},
		{Title: "Emma", Author: "Jane Austen", Rating: 4, Notes: "n", DateRead: "2024-01-02"},
		{Title: "Persuasion", Author: "Jane Austen", Rating: 5, Notes: "n", DateRead: "2024-01-03"},
	} {
		if _, err := repo.Create(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	cases := []struct {
		q    string
		want []string
	}{
		{"", []string{"Dune", "Emma", "Persuasion"}},
		{"AUSTEN", []string{"Emma", "Persuasion"}},
		{"un", []string{"Dune"}},
		{"tolkien", []string{}},
	}
	for _, c := range cases {
		got, err := repo.Search(ctx, c.q)
		if err != nil {
			t.Fatalf("Search(%q): %v", c.q, err)
		}
		titles := make([]string, len(got))
		for i, b := range got {
			titles[i] = b.Title
		}
		if !slices.Equal(titles, c.want) {
			t.Errorf("Search(%q) = %v, want %v", c.q, titles, c.want)
		}
	}
}

func TestRepository_ListIsACopy(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()
	repo.Create(ctx, duneFields())

	list, _ := repo.List(ctx)
	list[0].Title = "mutated"

	again, _ := repo.List(ctx)
	if again[0].Title != "Dune" {
		t.Errorf("List result aliases stored data: %q", again[0].Title)
	}
}

func TestRepository_WriteFailure(t *testing.T) {
	repo, mem, _ := newRepo(t)
	ctx := context.Background()
	repo.Create(ctx, duneFields())

	mem.FailWrites = true
	_, err := repo.Create(ctx, duneFields())
	if !errors.Is(err, catalog.ErrPersistence) {
		t.Errorf("Create with failing store error = %v, want ErrPersistence", err)
	}
	mem.FailWrites = false

	list, _ := repo.List(ctx)
	if len(list) != 1 {
		t.Errorf("collection has %d books after failed write, want 1", len(list))
	}
}

func TestRepository_CorruptStore(t *testing.T) {
	repo, mem, _ := newRepo(t)
	mem.SetRaw([]byte("not json"))
	if _, err := repo.List(context.Background()); !errors.Is(err, catalog.ErrPersistence) {
		t.Errorf("List on corrupt store error = %v, want ErrPersistence", err)
	}
}

// conflictingStore simulates another process writing between our read
// and our write.
type conflictingStore struct {
	*store.Memory
	once sync.Once
}

func (s *conflictingStore) ReadAll(ctx context.Context) (catalog.Snapshot, error) {
	snap, err := s.Memory.ReadAll(ctx)
	s.once.Do(func() {
		_, _ = s.Memory.WriteAll(ctx, []catalog.Book{{ID: "other", Title: "Other"}}, "")
	})
	return snap, err
}

func TestRepository_ConflictCheck(t *testing.T) {
	s := &conflictingStore{Memory: store.NewMemory()}
	repo := catalog.NewRepository(s, nil, catalog.WithConflictCheck(true))

	_, err := repo.Create(context.Background(), duneFields())
	if !errors.Is(err, catalog.ErrConflict) {
		t.Errorf("Create after concurrent write error = %v, want ErrConflict", err)
	}
}

func TestRepository_LastWriterWinsByDefault(t *testing.T) {
	s := &conflictingStore{Memory: store.NewMemory()}
	repo := catalog.NewRepository(s, nil)

	if _, err := repo.Create(context.Background(), duneFields()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	list, _ := repo.List(context.Background())
	if len(list) != 1 || list[0].Title != "Dune" {
		t.Errorf("collection = %v, want only the last write", ids(list))
	}
}

func TestRepository_RefreshCovers(t *testing.T) {
	repo, _, covers := newRepo(t)
	ctx := context.Background()

	f := duneFields()
	f.ISBN = "1111111111"
	b, _ := repo.Create(ctx, f)
	nf := duneFields()
	nf.ISBN = ""
	repo.Create(ctx, nf)

	covers.set("1111111111", "https://covers.example/new.jpg")
	n, err := repo.RefreshCovers(ctx)
	if err != nil {
		t.Fatalf("RefreshCovers: %v", err)
	}
	if n != 1 {
		t.Errorf("RefreshCovers changed %d, want 1", n)
	}
	got, _ := repo.Get(ctx, b.ID)
	if got.CoverURL != "https://covers.example/new.jpg" {
		t.Errorf("CoverURL = %q after refresh", got.CoverURL)
	}

	n, _ = repo.RefreshCovers(ctx)
	if n != 0 {
		t.Errorf("second RefreshCovers changed %d, want 0", n)
	}
}

func TestRepository_Import(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()
	existing, _ := repo.Create(ctx, duneFields())

	n, err := repo.Import(ctx, []catalog.Book{
		{ID: existing.ID, Title: "Collides", Author: "A", Rating: 3, Notes: "n", DateRead: "2020-01-01"},
		{Title: "No ID", Author: "B", Rating: 4, Notes: "n", DateRead: "2020-01-02"},
	})
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 2 {
		t.Errorf("Import = %d, want 2", n)
	}

	list, _ := repo.List(ctx)
	if len(list) != 3 {
		t.Fatalf("collection has %d books, want 3", len(list))
	}
	seen := map[string]bool{}
	for _, b := range list {
		if b.ID == "" || seen[b.ID] {
			t.Errorf("bad or duplicate ID %q", b.ID)
		}
		seen[b.ID] = true
		if b.CreatedAt.IsZero() || b.UpdatedAt.Before(b.CreatedAt) {
			t.Errorf("book %q has timestamps %v / %v", b.Title, b.CreatedAt, b.UpdatedAt)
		}
	}
}

// TestRepository_TwoBooksScenario walks through a typical session: add two
// books, sort them, edit one and delete the other.
func TestRepository_TwoBooksScenario(t *testing.T) {
	repo, _, _ := newRepo(t)
	ctx := context.Background()

	a, err := repo.Create(ctx, catalog.Fields{Title: "A", Author: "X", Rating: 5, Notes: "n", DateRead: "2024-01-01"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := repo.Create(ctx, catalog.Fields{Title: "B", Author: "Y", Rating: 3, Notes: "n", DateRead: "2024-02-01"})
	if err != nil {
		t.Fatal(err)
	}

	list, _ := repo.List(ctx)
	if got := ids(catalog.View{Sort: catalog.SortByRating}.Apply(list)); !slices.Equal(got, []string{a.ID, b.ID}) {
		t.Errorf("by rating = %v, want [A B]", got)
	}
	if got := ids(catalog.View{Sort: catalog.SortByDateRead}.Apply(list)); !slices.Equal(got, []string{b.ID, a.ID}) {
		t.Errorf("by dateRead = %v, want [B A]", got)
	}

	fb := b.Fields()
	fb.Rating = 5
	if _, err := repo.Update(ctx, b.ID, fb); err != nil {
		t.Fatalf("Update: %v", err)
	}
	list, _ = repo.List(ctx)
	if got := ids(catalog.View{Sort: catalog.SortByRating}.Apply(list)); !slices.Equal(got, []string{a.ID, b.ID}) {
		t.Errorf("by rating after tie = %v, want stored order [A B]", got)
	}

	if _, err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	list, _ = repo.List(ctx)
	if len(list) != 1 || list[0].ID != b.ID {
		t.Errorf("after delete = %v, want [B]", ids(list))
	}
}
