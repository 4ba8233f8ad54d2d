package cover

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/blackwell-systems/booklog/internal/metrics"
)

var errNoCover = errors.New("no cover")

// Cached remembers positive lookups for a while and collapses concurrent
// lookups of the same ISBN into one request. Misses are never remembered,
// so a cover added to the catalog later is picked up on the next lookup.
type Cached struct {
	next Resolver
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
	group   singleflight.Group
}

type cacheEntry struct {
	url     string
	expires time.Time
}

// NewCached wraps next. With ttl <= 0 nothing is remembered but
// concurrent lookups are still shared.
func NewCached(next Resolver, ttl time.Duration) *Cached {
	return &Cached{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Resolve answers from the cache or joins the lookup in flight for isbn.
func (c *Cached) Resolve(ctx context.Context, isbn string) (string, bool) {
	if url, ok := c.lookup(isbn); ok {
		metrics.ObserveCover(metrics.ResultCached)
		return url, true
	}

	// The shared lookup outlives any one caller; a caller that gives up
	// must not turn the answer into a miss for the others still waiting.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(isbn, func() (any, error) {
		url, ok := c.next.Resolve(shared, isbn)
		if !ok {
			return "", errNoCover
		}
		c.store(isbn, url)
		return url, nil
	})
	select {
	case <-ctx.Done():
		return "", false
	case res := <-ch:
		if res.Err != nil {
			return "", false
		}
		return res.Val.(string), true
	}
}

func (c *Cached) lookup(isbn string) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[isbn]
	if !ok {
		return "", false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, isbn)
		return "", false
	}
	return e.url, true
}

func (c *Cached) store(isbn, url string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[isbn] = cacheEntry{url: url, expires: c.now().Add(c.ttl)}
}
