package accountsvc

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/gobank/internal/usecase"
)

// CachedOwnerDirectory remembers owners the users service confirmed, so
// repeated account openings for one owner skip the remote call. Negative
// answers are never cached.
type CachedOwnerDirectory struct {
	next   usecase.OwnerDirectory
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedOwnerDirectory wraps next with cache.
func NewCachedOwnerDirectory(next usecase.OwnerDirectory, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedOwnerDirectory {
	return &CachedOwnerDirectory{
		next:   next,
		cache:  cache,
		ttl:    ttl,
		logger: logger.With().Str("component", "owner_cache").Logger(),
	}
}

// OwnerExists implements usecase.OwnerDirectory.
func (c *CachedOwnerDirectory) OwnerExists(ctx context.Context, ownerID string) (bool, error) {
	key := "owner:" + ownerID

	hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("owner cache read failed")
	} else if hit != nil {
		return true, nil
	}

	exists, err := c.next.OwnerExists(ctx, ownerID)
	if err != nil || !exists {
		return exists, err
	}

	if err := c.cache.Set(ctx, key, []byte("1"), c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("owner_id", ownerID).Msg("owner cache write failed")
	}
	return true, nil
}
