// Package inmem provides the session cache and per-session mutation lock
// backed by process memory, for tests and single-node development. The
// semantics mirror the redis backend: TTL reset on every put, misses and
// expiries are indistinguishable, locks are token-released.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/store"
)

type (
	// Cache is an in-memory store.Cache.
	Cache struct {
		mu      sync.Mutex
		ttl     time.Duration
		now     func() time.Time
		entries map[string]entry
		err     error
	}

	entry struct {
		payload []byte
		expires time.Time
	}

	// Locker is an in-memory store.Locker.
	Locker struct {
		mu   sync.Mutex
		held map[string]string
	}
)

// NewCache returns a cache whose entries expire ttl after their last put.
// Zero or negative ttl disables expiry.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the stored payload. Missing and expired entries both report
// configurator.ErrSessionExpired.
func (c *Cache) Get(ctx context.Context, sessionID string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	e, ok := c.entries[sessionID]
	if !ok {
		return nil, configurator.ErrSessionExpired
	}
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		delete(c.entries, sessionID)
		return nil, configurator.ErrSessionExpired
	}
	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return out, nil
}

// Put stores the payload and resets its TTL.
func (c *Cache) Put(ctx context.Context, sessionID string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	stored := make([]byte, len(payload))
	copy(stored, payload)
	var expires time.Time
	if c.ttl > 0 {
		expires = c.now().Add(c.ttl)
	}
	c.entries[sessionID] = entry{payload: stored, expires: expires}
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (c *Cache) Delete(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	delete(c.entries, sessionID)
	return nil
}

// Expire force-expires an entry, regardless of its TTL.
func (c *Cache) Expire(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, sessionID)
}

// SetError makes every operation return err until cleared with nil.
func (c *Cache) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// NewLocker returns a locker with no held locks.
func NewLocker() *Locker {
	return &Locker{held: make(map[string]string)}
}

// Acquire takes the session's mutation lock and returns its release token.
func (l *Locker) Acquire(ctx context.Context, sessionID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[sessionID]; ok {
		return "", store.ErrSessionBusy
	}
	token := uuid.NewString()
	l.held[sessionID] = token
	return token, nil
}

// Release frees the lock if the token still owns it; stale tokens are a
// no-op.
func (l *Locker) Release(ctx context.Context, sessionID, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[sessionID] == token {
		delete(l.held, sessionID)
	}
	return nil
}
