package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository provides the CRUD and search operations over a Store.
// It centralizes the load → modify → save cycle; it is the only component
// that writes to the store.
type Repository struct {
	store         Store
	covers        CoverResolver
	now           func() time.Time
	newID         func() string
	conflictCheck bool
	log           *slog.Logger

	// mu serializes mutations issued from this process. Writers in other
	// processes still race unless conflict checking is on.
	mu sync.Mutex
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithIDGenerator overrides how new book IDs are produced.
func WithIDGenerator(fn func() string) Option {
	return func(r *Repository) { r.newID = fn }
}

// WithConflictCheck makes writes fail with ErrConflict when the stored
// collection changed between read and write.
func WithConflictCheck(on bool) Option {
	return func(r *Repository) { r.conflictCheck = on }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRepository creates a repository over store. covers may be nil, in
// which case no cover lookups are made.
func NewRepository(store Store, covers CoverResolver, opts ...Option) *Repository {
	r := &Repository{
		store:  store,
		covers: covers,
		now:    time.Now,
		newID:  uuid.NewString,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// List returns the full collection. The slice is the caller's own copy.
func (r *Repository) List(ctx context.Context) ([]Book, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return Clone(snap.Books), nil
}

// Get returns the book with the given ID, or ErrNotFound.
func (r *Repository) Get(ctx context.Context, id string) (Book, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return Book{}, err
	}
	b := ByID(snap.Books, id)
	if b == nil {
		return Book{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *b, nil
}

// Search returns books whose title or author contains q, ignoring case.
// An empty query returns the whole collection.
func (r *Repository) Search(ctx context.Context, q string) ([]Book, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return Filter{Search: q}.Apply(snap.Books), nil
}

// Create stores a new book built from f. The ID and timestamps are
// assigned here; the cover is looked up when an ISBN is given.
func (r *Repository) Create(ctx context.Context, f Fields) (Book, error) {
	coverURL, _ := r.resolveCover(ctx, f.ISBN)

	var created Book
	err := r.mutate(ctx, func(books []Book) ([]Book, error) {
		id, err := r.freshID(books)
		if err != nil {
			return nil, err
		}
		now := r.now().UTC()
		created = Book{ID: id, CreatedAt: now, UpdatedAt: now, CoverURL: coverURL}
		created.apply(f)
		return append(books, created), nil
	})
	if err != nil {
		return Book{}, err
	}
	r.log.Info("book created", "id", created.ID, "title", created.Title, "cover", created.CoverURL != "")
	return created, nil
}

// Update replaces the editable fields of the book with the given ID.
// With an ISBN the cover is re-resolved, and cleared if the catalog has
// none; without one the previous cover is kept. ID and CreatedAt never
// change and UpdatedAt never moves backwards.
func (r *Repository) Update(ctx context.Context, id string, f Fields) (Book, error) {
	if _, err := r.Get(ctx, id); err != nil {
		return Book{}, err
	}
	coverURL, lookedUp := r.resolveCover(ctx, f.ISBN)

	var updated Book
	err := r.mutate(ctx, func(books []Book) ([]Book, error) {
		b := ByID(books, id)
		if b == nil {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		b.apply(f)
		if lookedUp {
			b.CoverURL = coverURL
		}
		now := r.now().UTC()
		if now.Before(b.UpdatedAt) {
			now = b.UpdatedAt
		}
		b.UpdatedAt = now
		updated = *b
		return books, nil
	})
	if err != nil {
		return Book{}, err
	}
	r.log.Info("book updated", "id", id, "cover", updated.CoverURL != "")
	return updated, nil
}

// Delete removes the book with the given ID. Deleting a missing book is a
// no-op; removed reports whether anything was deleted.
func (r *Repository) Delete(ctx context.Context, id string) (removed bool, err error) {
	err = r.mutate(ctx, func(books []Book) ([]Book, error) {
		books, removed = Remove(books, id)
		if !removed {
			return nil, errSkipWrite
		}
		return books, nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		r.log.Info("book deleted", "id", id)
	}
	return removed, nil
}

// RefreshCovers re-resolves the cover of every book that has an ISBN and
// returns how many cover URLs changed.
func (r *Repository) RefreshCovers(ctx context.Context) (int, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return 0, err
	}

	type lookup struct{ isbn, url string }
	resolved := make(map[string]lookup)
	for _, b := range snap.Books {
		if !hasISBN(b.ISBN) {
			continue
		}
		url, _ := r.resolveCover(ctx, b.ISBN)
		resolved[b.ID] = lookup{isbn: b.ISBN, url: url}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	changed := 0
	err = r.mutate(ctx, func(books []Book) ([]Book, error) {
		for i := range books {
			l, ok := resolved[books[i].ID]
			// Skip books whose ISBN was edited while we were looking up.
			if !ok || books[i].ISBN != l.isbn || books[i].CoverURL == l.url {
				continue
			}
			books[i].CoverURL = l.url
			changed++
		}
		if changed == 0 {
			return nil, errSkipWrite
		}
		return books, nil
	})
	if err != nil {
		return 0, err
	}
	return changed, nil
}

// Import appends externally produced records, such as an export from
// another installation. Missing or colliding IDs are replaced with fresh
// ones and missing timestamps are filled in. Field contents are not
// validated here.
func (r *Repository) Import(ctx context.Context, incoming []Book) (int, error) {
	if len(incoming) == 0 {
		return 0, nil
	}
	err := r.mutate(ctx, func(books []Book) ([]Book, error) {
		now := r.now().UTC()
		for _, b := range incoming {
			if b.ID == "" || ByID(books, b.ID) != nil {
				id, err := r.freshID(books)
				if err != nil {
					return nil, err
				}
				b.ID = id
			}
			if b.CreatedAt.IsZero() {
				b.CreatedAt = now
			}
			if b.UpdatedAt.Before(b.CreatedAt) {
				b.UpdatedAt = b.CreatedAt
			}
			books = append(books, b)
		}
		return books, nil
	})
	if err != nil {
		return 0, err
	}
	r.log.Info("books imported", "count", len(incoming))
	return len(incoming), nil
}

// errSkipWrite tells mutate the collection is unchanged.
var errSkipWrite = errors.New("skip write")

// mutate loads the collection, applies fn and writes the result back.
// This is the only write path.
func (r *Repository) mutate(ctx context.Context, fn func([]Book) ([]Book, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return err
	}

	books, err := fn(Clone(snap.Books))
	if errors.Is(err, errSkipWrite) {
		return nil
	}
	if err != nil {
		return err
	}

	expect := ""
	if r.conflictCheck {
		expect = snap.Revision
	}
	if _, err := r.store.WriteAll(ctx, books, expect); err != nil {
		r.log.Error("writing collection failed", "error", err)
		return storeError("writing collection", err)
	}
	return nil
}

func (r *Repository) load(ctx context.Context) (Snapshot, error) {
	snap, err := r.store.ReadAll(ctx)
	if err != nil {
		r.log.Error("reading collection failed", "error", err)
		return Snapshot{}, storeError("reading collection", err)
	}
	if snap.Books == nil {
		snap.Books = []Book{}
	}
	return snap, nil
}

// resolveCover looks up the cover for isbn. lookedUp is false when there
// was nothing to look up.
func (r *Repository) resolveCover(ctx context.Context, isbn string) (url string, lookedUp bool) {
	if !hasISBN(isbn) || r.covers == nil {
		return "", false
	}
	url, ok := r.covers.Resolve(ctx, strings.TrimSpace(isbn))
	if !ok {
		return "", true
	}
	return url, true
}

func (r *Repository) freshID(books []Book) (string, error) {
	for range 8 {
		id := r.newID()
		if id != "" && ByID(books, id) == nil {
			return id, nil
		}
	}
	return "", errors.New("could not generate a unique book id")
}

func hasISBN(isbn string) bool {
	return strings.TrimSpace(isbn) != ""
}

// storeError makes sure a store failure is recognizable as ErrPersistence
// or ErrConflict.
func storeError(op string, err error) error {
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrPersistence) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
}
