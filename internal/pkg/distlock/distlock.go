// Package distlock provides short-lived cross-process locks.
//
// Redis (SET NX with a TTL and an owner token) is preferred. Without Redis a
// PostgreSQL session advisory lock pinned to one pooled connection is used;
// it only excludes concurrent holders and has no TTL.
package distlock

import (
	"context"
	"database/sql"
	"time"

	"github.com/redis/go-redis/v9"
)

// Lock is a single named lock. A Lock value is not safe for concurrent use;
// obtain one per holder from a Factory.
type Lock interface {
	// Acquire tries once to take the lock and reports whether it succeeded.
	Acquire(ctx context.Context) (bool, error)
	// Release drops the lock if this holder still owns it.
	Release(ctx context.Context) error
}

// Factory hands out locks on the configured backend.
type Factory struct {
	redis  *redis.Client
	db     *sql.DB
	prefix string
	ttl    time.Duration
}

// NewFactory creates a lock factory. A non-nil redisClient selects Redis;
// otherwise db is used for advisory locks.
func NewFactory(redisClient *redis.Client, db *sql.DB, prefix string, ttl time.Duration) *Factory {
	return &Factory{redis: redisClient, db: db, prefix: prefix, ttl: ttl}
}

// Lock returns a fresh lock for key.
func (f *Factory) Lock(key string) Lock {
	name := f.prefix + key
	if f.redis != nil {
		return NewRedisLock(f.redis, name, f.ttl)
	}
	return NewPGAdvisoryLock(f.db, name)
}
