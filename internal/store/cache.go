package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"realtycrm/internal/models"
)

const snapshotKey = "crm:snapshot"

// Collections is the cached payload: the raw collections only, never
// loading flags or errors.
type Collections struct {
	Leads         []models.Lead        `json:"leads"`
	Opportunities []models.Opportunity `json:"opportunities"`
	Projects      []models.Project     `json:"projects"`
	SiteVisits    []models.SiteVisit   `json:"site_visits"`
	SavedAt       time.Time            `json:"saved_at"`
}

type SnapshotCache interface {
	Load(ctx context.Context) (*Collections, bool, error)
	Save(ctx context.Context, c *Collections) error
}

type NoopCache struct{}

func NewNoopCache() *NoopCache { return &NoopCache{} }

func (NoopCache) Load(ctx context.Context) (*Collections, bool, error) { return nil, false, nil }

func (NoopCache) Save(ctx context.Context, c *Collections) error { return nil }

// RedisCache stores the last good snapshot as one JSON value.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Load(ctx context.Context) (*Collections, bool, error) {
	raw, err := c.client.Get(ctx, snapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get snapshot: %w", err)
	}
	var out Collections
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return &out, true, nil
}

func (c *RedisCache) Save(ctx context.Context, snap *Collections) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}
