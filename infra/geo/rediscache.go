package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	coregeo "github.com/ChrisCryptoBot/meddropdispatch-sub004/core/geo"
	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/logger"
)

// RedisConfig configures the distance cache.
type RedisConfig struct {
	Addr       string `json:"addr"`
	Password   string `json:"password"`
	DB         int    `json:"db"`
	TTLMinutes int    `json:"ttl_minutes"`
}

// CachedProvider is a read-through cache over another DistanceProvider.
// Cache failures degrade to direct lookups; a broken Redis never makes
// distance resolution fail.
type CachedProvider struct {
	inner coregeo.DistanceProvider
	rdb   *redis.Client
	ttl   time.Duration
	log   logger.Logger
}

// NewCachedProvider wraps inner with a Redis cache.
func NewCachedProvider(inner coregeo.DistanceProvider, cfg RedisConfig, log logger.Logger) *CachedProvider {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = time.Hour
	}
	if log == nil {
		log = logger.Nop{}
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return &CachedProvider{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (p *CachedProvider) Distance(ctx context.Context, from, to string) (coregeo.Leg, error) {
	cacheKey := fmt.Sprintf("dist:%s|%s", from, to)

	if raw, err := p.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var leg coregeo.Leg
		if err := json.Unmarshal([]byte(raw), &leg); err == nil {
			return leg, nil
		}
		p.log.Warnf("corrupt distance cache entry %s, refetching", cacheKey)
	} else if err != redis.Nil {
		p.log.Warnf("distance cache read %s: %v", cacheKey, err)
	}

	leg, err := p.inner.Distance(ctx, from, to)
	if err != nil {
		return coregeo.Leg{}, err
	}

	if raw, err := json.Marshal(leg); err == nil {
		if err := p.rdb.Set(ctx, cacheKey, raw, p.ttl).Err(); err != nil {
			p.log.Warnf("distance cache write %s: %v", cacheKey, err)
		}
	}
	return leg, nil
}

// Close releases the Redis connection.
func (p *CachedProvider) Close() error { return p.rdb.Close() }
