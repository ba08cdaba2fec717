package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// LockerOptions tunes the distributed mutex.
type LockerOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

// DefaultLockerOptions covers one settlement: a few collaborator calls.
func DefaultLockerOptions() LockerOptions {
	return LockerOptions{
		Expiry:     30 * time.Second,
		Tries:      60,
		RetryDelay: 250 * time.Millisecond,
	}
}

// Locker implements usecase.Locker with a redsync mutex so settlement of one
// transaction is serialized across replicas.
type Locker struct {
	redsync *redsync.Redsync
	opts    LockerOptions
	logger  zerolog.Logger
}

// NewLocker creates a Locker on client.
func NewLocker(client redis.UniversalClient, opts LockerOptions, logger zerolog.Logger) *Locker {
	return &Locker{
		redsync: redsync.New(goredis.NewPool(client)),
		opts:    opts,
		logger:  logger.With().Str("component", "locker").Logger(),
	}
}

// WithLock runs fn while holding the lock on key.
func (l *Locker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	mutex := l.redsync.NewMutex(
		"lock:"+key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithTries(l.opts.Tries),
		redsync.WithRetryDelay(l.opts.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		return fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}

	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			l.logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}()

	return fn(ctx)
}
