// Package ratelimit throttles authorization attempts per key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config bounds authorization attempts for one key.
type Config struct {
	// Attempts allowed inside Window before the key is locked.
	Attempts int
	Window   time.Duration
	// Cooldown is how long a key stays locked once it ran out of attempts.
	Cooldown time.Duration
	// MinInterval is the shortest gap allowed between two attempts on a key.
	// Zero disables the check.
	MinInterval time.Duration
	// IdleTTL drops keys not seen for this long.
	IdleTTL time.Duration
}

type entry struct {
	limiter      *rate.Limiter
	lastSeen     time.Time
	lastAttempt  time.Time
	blockedUntil time.Time
}

// AttemptLimiter implements usecase.AttemptLimiter with a token bucket per
// key. Tokens refill at Attempts per Window; an empty bucket locks the key
// for Cooldown. Attempts closer than MinInterval to the previous one are
// rejected without spending a token.
type AttemptLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	cfg     Config
	now     func() time.Time
}

// NewAttemptLimiter creates an AttemptLimiter.
func NewAttemptLimiter(cfg Config) *AttemptLimiter {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = cfg.Window + cfg.Cooldown
	}

	return &AttemptLimiter{
		entries: make(map[string]*entry),
		cfg:     cfg,
		now:     time.Now,
	}
}

// Allow records one attempt for every key. It returns false and the time
// left when any key is locked or just ran out of attempts.
func (l *AttemptLimiter) Allow(keys ...string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	var wait time.Duration
	for _, key := range keys {
		e, ok := l.entries[key]
		if !ok {
			continue
		}
		if d := l.blockedFor(e, now); d > wait {
			wait = d
		}
	}
	if wait > 0 {
		return false, wait
	}

	allowed := true
	for _, key := range keys {
		e := l.entry(key, now)
		e.lastSeen = now
		e.lastAttempt = now
		if e.limiter.AllowN(now, 1) {
			continue
		}
		allowed = false
		e.blockedUntil = now.Add(l.cooldown(e, now))
		if d := e.blockedUntil.Sub(now); d > wait {
			wait = d
		}
	}

	return allowed, wait
}

// blockedFor returns how long e must wait before its next attempt.
func (l *AttemptLimiter) blockedFor(e *entry, now time.Time) time.Duration {
	var wait time.Duration
	if now.Before(e.blockedUntil) {
		wait = e.blockedUntil.Sub(now)
	}
	if l.cfg.MinInterval > 0 && !e.lastAttempt.IsZero() {
		if d := e.lastAttempt.Add(l.cfg.MinInterval).Sub(now); d > wait {
			wait = d
		}
	}
	return wait
}

func (l *AttemptLimiter) entry(key string, now time.Time) *entry {
	e, ok := l.entries[key]
	if !ok {
		every := rate.Every(l.cfg.Window / time.Duration(l.cfg.Attempts))
		e = &entry{limiter: rate.NewLimiter(every, l.cfg.Attempts), lastSeen: now}
		l.entries[key] = e
	}
	return e
}

// cooldown falls back to the time until the next token without a configured
// lock period.
func (l *AttemptLimiter) cooldown(e *entry, now time.Time) time.Duration {
	if l.cfg.Cooldown > 0 {
		return l.cfg.Cooldown
	}
	missing := 1 - e.limiter.TokensAt(now)
	return time.Duration(missing / float64(e.limiter.Limit()) * float64(time.Second))
}

// Sweep drops keys idle for longer than IdleTTL and returns how many it removed.
func (l *AttemptLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.entries {
		if now.Sub(e.lastSeen) > l.cfg.IdleTTL && !now.Before(e.blockedUntil) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys.
func (l *AttemptLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Run sweeps idle keys every interval until ctx is done.
func (l *AttemptLimiter) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}
