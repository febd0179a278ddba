// Package cache provides the lookaside key/value store used in front of the
// relational store.
//
// A Store distinguishes a logical miss (ErrMiss) from a connectivity failure
// (any other error). Callers must stay correct when every call misses or
// fails; the cache is an optimization, never a source of truth.
//
// Rebuilt entries are written against a per-key generation. Invalidate bumps
// the generation and drops the entry in one step, so a rebuild that read the
// store before an invalidation can never land after it.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Store is the capability the services depend on. Implementations must be
// safe for concurrent use.
type Store interface {
	// Get returns the value for key, ErrMiss when absent, or a transport error.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Generation returns the invalidation generation of key, 0 if never
	// invalidated.
	Generation(ctx context.Context, key string) (int64, error)
	// SetIfGeneration stores value only while key's generation still equals
	// gen, and reports whether it did.
	SetIfGeneration(ctx context.Context, key string, value []byte, ttl time.Duration, gen int64) (bool, error)
	// Invalidate bumps key's generation and removes the entry atomically.
	Invalidate(ctx context.Context, key string) error
}

// GenerationKey holds the invalidation counter for key.
func GenerationKey(key string) string {
	return key + ":gen"
}

// PlaylistSongsKey is the cache key holding a playlist's serialized song list.
func PlaylistSongsKey(playlistID string) string {
	return "playlist:" + playlistID + ":songs"
}

// NopStore is a Store that never holds anything. It is used when no cache
// backend is configured.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NopStore) Delete(context.Context, string) error { return nil }

func (NopStore) Generation(context.Context, string) (int64, error) { return 0, nil }

func (NopStore) SetIfGeneration(context.Context, string, []byte, time.Duration, int64) (bool, error) {
	return true, nil
}

func (NopStore) Invalidate(context.Context, string) error { return nil }
