package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/source-discovery/internal/logger"
	"github.com/jonesrussell/north-cloud/source-discovery/internal/models"
)

const cacheKeyPrefix = "geo:country:"

// Cache stores resolutions in Redis with a tier-dependent TTL: Tier-0
// domains change owners rarely but are looked up constantly, so they get
// the short TTL and everything else the long one.
type Cache struct {
	client     *redis.Client
	tier0TTL   time.Duration
	defaultTTL time.Duration
	log        logger.Logger
}

// NewCache creates a resolution cache over an existing Redis client.
func NewCache(client *redis.Client, tier0TTL, defaultTTL time.Duration, log logger.Logger) *Cache {
	return &Cache{
		client:     client,
		tier0TTL:   tier0TTL,
		defaultTTL: defaultTTL,
		log:        log,
	}
}

// Get returns a cached resolution. Only non-UNK resolutions are ever
// stored, so a hit is a previously settled answer and reports high
// confidence. Cache failures are treated as misses.
func (c *Cache) Get(ctx context.Context, domain string) (*Resolution, bool) {
	data, err := c.client.Get(ctx, cacheKeyPrefix+domain).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("geo cache read failed", logger.String("domain", domain), logger.Error(err))
		}
		return nil, false
	}

	var resolution Resolution
	if err := json.Unmarshal(data, &resolution); err != nil {
		c.log.Warn("geo cache entry corrupt", logger.String("domain", domain), logger.Error(err))
		return nil, false
	}
	resolution.FromCache = true
	resolution.Confidence = models.ConfidenceHigh
	return &resolution, true
}

// Put stores a resolution. Failures are logged and swallowed; the cache is
// an optimization, not a source of truth.
func (c *Cache) Put(ctx context.Context, domain string, resolution *Resolution, tier models.Tier) {
	data, err := json.Marshal(resolution)
	if err != nil {
		c.log.Error("marshal resolution", logger.Error(err))
		return
	}

	ttl := c.defaultTTL
	if tier == models.Tier0 {
		ttl = c.tier0TTL
	}
	if err := c.client.Set(ctx, cacheKeyPrefix+domain, data, ttl).Err(); err != nil {
		c.log.Warn("geo cache write failed", logger.String("domain", domain), logger.Error(err))
	}
}

// Invalidate drops a cached resolution, used when a manual override lands.
func (c *Cache) Invalidate(ctx context.Context, domain string) error {
	if err := c.client.Del(ctx, cacheKeyPrefix+domain).Err(); err != nil {
		return fmt.Errorf("invalidate geo cache: %w", err)
	}
	return nil
}
