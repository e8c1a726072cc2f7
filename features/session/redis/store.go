package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/beedev/recommenderv2/configurator"
	"github.com/beedev/recommenderv2/configurator/store"
	clientsredis "github.com/beedev/recommenderv2/features/session/redis/clients/redis"
)

type (
	// Cache implements store.Cache over Redis. Entries live under
	// "<prefix><session id>"; every Put resets the TTL so active
	// conversations stay hot while abandoned ones age out.
	Cache struct {
		client clientsredis.Client
		prefix string
		ttl    time.Duration
	}

	// CacheOptions configures NewCache.
	CacheOptions struct {
		// Client is the Redis session client. Required.
		Client clientsredis.Client

		// TTL is how long an untouched session survives. Zero means
		// DefaultTTL.
		TTL time.Duration

		// Prefix namespaces session keys. Empty means DefaultKeyPrefix.
		Prefix string
	}

	// Locker implements store.Locker over Redis SET NX PX. Each acquired
	// lock carries a random token; release is a compare-and-delete so a
	// holder whose lock expired cannot free a successor's lock.
	Locker struct {
		client clientsredis.Client
		prefix string
		ttl    time.Duration
	}

	// LockerOptions configures NewLocker.
	LockerOptions struct {
		// Client is the Redis session client. Required.
		Client clientsredis.Client

		// TTL bounds how long a crashed holder blocks the session. Zero
		// means DefaultLockTTL.
		TTL time.Duration

		// Prefix namespaces lock keys. Empty means DefaultLockPrefix.
		Prefix string
	}
)

const (
	// DefaultTTL is how long an untouched session survives in the cache.
	DefaultTTL = time.Hour

	// DefaultKeyPrefix namespaces session payload keys.
	DefaultKeyPrefix = "session:"

	// DefaultLockTTL bounds how long a crashed turn blocks its session. It
	// matches the turn deadline so an abandoned lock clears as soon as the
	// turn it protected could no longer be running.
	DefaultLockTTL = 30 * time.Second

	// DefaultLockPrefix namespaces lock keys.
	DefaultLockPrefix = "session:lock:"
)

// NewCache builds a Redis-backed session cache.
func NewCache(opts CacheOptions) (*Cache, error) {
	if opts.Client == nil {
		return nil, errors.New("redis: client is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Cache{client: opts.Client, prefix: prefix, ttl: ttl}, nil
}

// Get returns the stored payload. Missing and expired entries both report
// configurator.ErrSessionExpired; transport failures wrap
// store.ErrUnavailable.
func (c *Cache) Get(ctx context.Context, sessionID string) ([]byte, error) {
	b, err := c.client.GetBytes(ctx, c.prefix+sessionID)
	if err != nil {
		if errors.Is(err, clientsredis.ErrNotFound) {
			return nil, configurator.ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return b, nil
}

// Put stores the payload and resets its TTL.
func (c *Cache) Put(ctx context.Context, sessionID string, payload []byte) error {
	if err := c.client.SetBytes(ctx, c.prefix+sessionID, payload, c.ttl); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// Delete removes the session. Deleting a missing session is not an error.
func (c *Cache) Delete(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.prefix+sessionID); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// NewLocker builds a Redis-backed per-session mutation locker.
func NewLocker(opts LockerOptions) (*Locker, error) {
	if opts.Client == nil {
		return nil, errors.New("redis: client is required")
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultLockPrefix
	}
	return &Locker{client: opts.Client, prefix: prefix, ttl: ttl}, nil
}

// Acquire takes the session's mutation lock and returns its release token.
// Returns store.ErrSessionBusy while another holder has it.
func (l *Locker) Acquire(ctx context.Context, sessionID string) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+sessionID, token, l.ttl)
	if err != nil {
		return "", fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if !ok {
		return "", store.ErrSessionBusy
	}
	return token, nil
}

// Release frees the lock if the token still owns it; stale tokens are a
// no-op.
func (l *Locker) Release(ctx context.Context, sessionID, token string) error {
	if _, err := l.client.CompareAndDel(ctx, l.prefix+sessionID, token); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}
