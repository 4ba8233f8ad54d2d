package store

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/blackwell-systems/booklog/internal/catalog"
)

// Memory keeps the serialized collection in process. The payload is stored
// encoded so callers never share slices with the store.
type Memory struct {
	mu   sync.Mutex
	data []byte
	rev  int

	// FailWrites makes every write fail, for exercising error paths.
	FailWrites bool
}

var errQuota = errors.New("storage quota exceeded")

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string { return BackendMemory }

func (m *Memory) Close() error { return nil }

func (m *Memory) ReadAll(ctx context.Context) (catalog.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return catalog.Snapshot{}, persistErr("reading collection", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	books, err := decode(m.data)
	if err != nil {
		return catalog.Snapshot{}, err
	}
	return catalog.Snapshot{Books: books, Revision: m.revision()}, nil
}

func (m *Memory) WriteAll(ctx context.Context, books []catalog.Book, expect string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", persistErr("writing collection", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return "", persistErr("writing collection", errQuota)
	}
	if expect != "" && expect != m.revision() {
		return "", conflictErr(expect, m.revision())
	}
	data, err := encode(books)
	if err != nil {
		return "", err
	}
	m.data = data
	m.rev++
	return m.revision(), nil
}

// SetRaw replaces the stored payload verbatim.
func (m *Memory) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	m.rev++
}

func (m *Memory) revision() string {
	return strconv.Itoa(m.rev)
}
