package cover

import (
	"context"
	"sync"
)

// Tracker hands out generation tokens for cover previews. Starting a new
// lookup cancels the previous one, and only the result carrying the latest
// token is authoritative.
type Tracker struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// Begin cancels any in-flight lookup and returns the token and context for
// a new one.
func (t *Tracker) Begin(parent context.Context) (uint64, context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	t.gen++
	t.cancel = cancel
	return t.gen, ctx
}

// Current reports whether token belongs to the latest lookup.
func (t *Tracker) Current(token uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return token == t.gen && t.cancel != nil
}

// Stop cancels any in-flight lookup; results that arrive afterwards are
// not current.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.gen++
}
