package catalog

import "context"

// Snapshot is the whole collection as read from a Store, with the revision
// the store assigned to it.
type Snapshot struct {
	Books    []Book
	Revision string
}

// Store persists the entire collection as a single entry. Writes always
// replace the whole collection; there are no partial updates.
//
// WriteAll with an empty expect overwrites unconditionally (last writer
// wins). A non-empty expect must equal the current revision or the write
// fails with ErrConflict. Other failures wrap ErrPersistence.
type Store interface {
	ReadAll(ctx context.Context) (Snapshot, error)
	WriteAll(ctx context.Context, books []Book, expect string) (revision string, err error)
}

// CoverResolver maps an ISBN to a cover image URL. ok is false when the
// catalog has no real cover or the lookup failed for any reason.
type CoverResolver interface {
	Resolve(ctx context.Context, isbn string) (url string, ok bool)
}
