// Package rediscache shares geocoder and classifier results between service
// instances through Redis. Redis failures never fail a lookup; the decorated
// service is asked instead.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/observability"
)

// Key prefixes.
const (
	geocodePrefix  = "geocode-"
	loctypePrefix  = "loctype-"
	cacheLayerName = "redis"
)

// Store is the subset of the Redis client the cache uses.
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// NewClient opens a Redis client. It does not connect until first use.
func NewClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

type cache struct {
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// load decodes the value at key into v. A miss or any Redis or decoding
// failure reports false.
func (c *cache) load(ctx context.Context, key string, v any) bool {
	s, err := c.store.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("redis get failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal([]byte(s), v); err != nil {
		c.logger.Warn("redis value undecodable", "key", key, "error", err)
		return false
	}
	return true
}

func (c *cache) save(ctx context.Context, key string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("redis value unencodable", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, string(b), c.ttl).Err(); err != nil {
		c.logger.Warn("redis set failed", "key", key, "error", err)
	}
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Geocoder caches a domain.Geocoder's candidates under geocode-{feature}.
type Geocoder struct {
	cache
	inner   domain.Geocoder
	metrics *observability.Metrics
}

// NewGeocoder wraps inner with a Redis cache whose entries live for ttl.
func NewGeocoder(inner domain.Geocoder, store Store, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Geocoder {
	return &Geocoder{
		cache:   cache{store: store, ttl: ttl, logger: logger},
		inner:   inner,
		metrics: metrics,
	}
}

func (g *Geocoder) Geocode(ctx context.Context, feature string) ([]domain.GeocodeCandidate, error) {
	key := geocodePrefix + normalizeKey(feature)

	var cached []domain.GeocodeCandidate
	if g.load(ctx, key, &cached) {
		g.metrics.GeocodeCache.WithLabelValues(cacheLayerName, "hit").Inc()
		return cached, nil
	}
	g.metrics.GeocodeCache.WithLabelValues(cacheLayerName, "miss").Inc()

	result, err := g.inner.Geocode(ctx, feature)
	if err != nil {
		return nil, err
	}
	if len(result) > 0 {
		g.save(ctx, key, result)
	}
	return result, nil
}

// Classifier caches a domain.Classifier's predictions under loctype-{name}.
type Classifier struct {
	cache
	inner domain.Classifier
}

// NewClassifier wraps inner with a Redis cache whose entries live for ttl.
func NewClassifier(inner domain.Classifier, store Store, ttl time.Duration, logger *slog.Logger) *Classifier {
	return &Classifier{
		cache: cache{store: store, ttl: ttl, logger: logger},
		inner: inner,
	}
}

func (c *Classifier) Classify(ctx context.Context, name string) (domain.Classification, error) {
	key := loctypePrefix + normalizeKey(name)

	var cached domain.Classification
	if c.load(ctx, key, &cached) {
		return cached, nil
	}

	class, err := c.inner.Classify(ctx, name)
	if err != nil {
		return domain.Classification{}, err
	}
	c.save(ctx, key, class)
	return class, nil
}
