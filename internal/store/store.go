// Package store provides whole-value key-value persistence behind a
// uniform interface. The filesystem backend serves development, the redis
// backend serves hosted deployments; both store one JSON document per key.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("key not found")

// Store is the storage backend interface. Values are opaque byte slices;
// callers use GetJSON/SetJSON for structured data.
type Store interface {
	// Get fetches the value for key. Returns ErrNotFound if the key
	// has never been written.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set writes the value for key. The write is atomic from the
	// caller's perspective: a concurrent reader observes either the
	// previous value or the new one, never a partial write.
	Set(ctx context.Context, key string, value []byte) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Backend returns a short name identifying the backend ("filesystem",
	// "redis", "memory") for the health endpoint.
	Backend() string
}

// GetJSON fetches and decodes the value for key into a fresh T. Any
// failure - missing key, malformed data, connection error - yields def
// instead of an error, so readers always operate on a well-formed
// (possibly empty) structure.
func GetJSON[T any](ctx context.Context, s Store, key string, def T) T {
	data, err := s.Get(ctx, key)
	if err != nil {
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return def
	}
	return v
}

// SetJSON encodes value and writes it under key. Unlike reads, write
// failures propagate: callers must not silently lose writes.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding value for key %s: %w", key, err)
	}
	if err := s.Set(ctx, key, data); err != nil {
		return fmt.Errorf("writing key %s: %w", key, err)
	}
	return nil
}
