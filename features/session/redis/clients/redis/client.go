// Package redis hosts the narrow go-redis wrapper used by the session cache
// and locker.
package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"goa.design/clue/health"
)

// Client exposes the Redis operations used by the session cache and locker.
type Client interface {
	health.Pinger

	// GetBytes returns the value at key. Missing keys return ErrNotFound.
	GetBytes(ctx context.Context, key string) ([]byte, error)

	// SetBytes stores value at key with the given TTL. Zero ttl means no
	// expiry.
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes key. Deleting a missing key is not an error.
	Del(ctx context.Context, key string) error

	// SetNX stores value at key with the given TTL when the key does not
	// exist yet and reports whether it did.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// CompareAndDel removes key when its current value equals expect and
	// reports whether it did. The comparison and delete are atomic.
	CompareAndDel(ctx context.Context, key, expect string) (bool, error)
}

// ErrNotFound reports a missing key.
var ErrNotFound = errors.New("redis: key not found")

// Options configures the Redis session client.
type Options struct {
	// Redis is the underlying go-redis client. Required.
	Redis *goredis.Client
}

const clientName = "session-redis"

// unlockScript deletes a lock key only while the caller still owns it, so a
// holder whose lock expired cannot release a successor's lock.
var unlockScript = goredis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

type client struct {
	rdb *goredis.Client
}

// New returns a Client backed by Redis.
func New(opts Options) (Client, error) {
	if opts.Redis == nil {
		return nil, errors.New("redis client is required")
	}
	return &client{rdb: opts.Redis}, nil
}

func (c *client) Name() string {
	return clientName
}

func (c *client) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return c.rdb.Ping(ctx).Err()
}

func (c *client) GetBytes(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (c *client) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *client) Del(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

func (c *client) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key, value, ttl).Result()
}

func (c *client) CompareAndDel(ctx context.Context, key, expect string) (bool, error) {
	n, err := unlockScript.Run(ctx, c.rdb, []string{key}, expect).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
