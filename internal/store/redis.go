package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

// RedisStore backs the Store interface with a hosted redis-compatible
// key-value service. Single-key SET is natively atomic, which satisfies
// the whole-value write contract without extra work.
type RedisStore struct {
	client *goredis.Client
}

// NewRedisStore creates a redis-backed store. addr may be a plain
// host:port or a redis:// / rediss:// URL; password overrides any
// credential embedded in the URL when non-empty.
//
// The client connects lazily; use Ping to verify reachability.
func NewRedisStore(addr, password string) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis store requires an address")
	}

	var opts *goredis.Options
	if strings.Contains(addr, "://") {
		parsed, err := goredis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &goredis.Options{Addr: addr}
	}
	if password != "" {
		opts.Password = password
	}

	return &RedisStore{client: goredis.NewClient(opts)}, nil
}

// Get fetches the value for key.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Set writes the value for key with no expiry.
func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Ping verifies the redis service is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}

func (r *RedisStore) Backend() string { return "redis" }

// Close releases the underlying client connections.
func (r *RedisStore) Close() error { return r.client.Close() }

// Compile-time check that RedisStore implements the Store interface
var _ Store = (*RedisStore)(nil)
