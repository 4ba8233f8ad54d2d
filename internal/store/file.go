package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/blackwell-systems/booklog/internal/catalog"
	"github.com/blackwell-systems/booklog/internal/util"
)

// File stores the collection as <dir>/<key>.json.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a file store rooted at dir.
func NewFile(dir, key string) (*File, error) {
	if dir == "" {
		return nil, errors.New("data directory is not set")
	}
	dir = util.ExpandHome(dir)
	if err := util.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return &File{path: filepath.Join(dir, key+".json")}, nil
}

func (f *File) Name() string { return BackendFile }

// Path is the file holding the collection.
func (f *File) Path() string { return f.path }

func (f *File) Close() error { return nil }

func (f *File) ReadAll(ctx context.Context) (catalog.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Snapshot{}, persistErr("reading collection", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	data, rev, err := f.read()
	if err != nil {
		return catalog.Snapshot{}, err
	}
	books, err := decode(data)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	return catalog.Snapshot{Books: books, Revision: rev}, nil
}

func (f *File) WriteAll(ctx context.Context, books []catalog.Book, expect string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", persistErr("writing collection", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if expect != "" {
		_, current, err := f.read()
		if err != nil {
			return "", err
		}
		if current != expect {
			return "", conflictErr(expect, current)
		}
	}

	data, err := encode(books)
	if err != nil {
		return "", err
	}
	if err := util.WriteFileAtomic(f.path, data, 0644); err != nil {
		return "", persistErr("writing collection", err)
	}
	return util.SHA256Bytes(data), nil
}

// read returns the raw payload and its revision. A missing file is an
// empty collection.
func (f *File) read() ([]byte, string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, emptyRevision, nil
	}
	if err != nil {
		return nil, "", persistErr("reading collection", err)
	}
	return data, util.SHA256Bytes(data), nil
}

// emptyRevision is the revision of a collection that was never written.
const emptyRevision = "0"
