package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/pkg/metrics"
	"promofeed/pkg/models"
)

// Repository stores the latest extracted feed per time frame.
type Repository interface {
	// Get returns ok=false when the frame was never stored.
	Get(ctx context.Context, frame string) ([]models.MessageRecord, bool, error)
	Set(ctx context.Context, frame string, msgs []models.MessageRecord) error
	Ping(ctx context.Context) error
}

type RedisRepository struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisRepository(client redis.UniversalClient, ttlSeconds int) *RedisRepository {
	if ttlSeconds <= 0 {
		ttlSeconds = constants.DefaultTTLSeconds
	}
	return &RedisRepository{client: client, ttl: time.Duration(ttlSeconds) * time.Second}
}

func Key(frame string) string {
	return constants.CacheKeyPrefixFeed + frame
}

func (r *RedisRepository) Get(ctx context.Context, frame string) ([]models.MessageRecord, bool, error) {
	raw, err := r.client.Get(ctx, Key(frame)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.IncCacheOperation("get", "miss")
		return nil, false, nil
	}
	if err != nil {
		metrics.IncCacheOperation("get", "error")
		return nil, false, fmt.Errorf("redis GET failed: %w", err)
	}

	var msgs []models.MessageRecord
	if err := json.Unmarshal(raw, &msgs); err != nil {
		metrics.IncCacheOperation("get", "error")
		return nil, false, fmt.Errorf("failed to decode cached feed: %w", err)
	}
	if msgs == nil {
		msgs = []models.MessageRecord{}
	}
	metrics.IncCacheOperation("get", "hit")
	return msgs, true, nil
}

func (r *RedisRepository) Set(ctx context.Context, frame string, msgs []models.MessageRecord) error {
	if msgs == nil {
		msgs = []models.MessageRecord{}
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		metrics.IncCacheOperation("set", "error")
		return fmt.Errorf("failed to encode feed: %w", err)
	}
	if err := r.client.Set(ctx, Key(frame), raw, r.ttl).Err(); err != nil {
		metrics.IncCacheOperation("set", "error")
		return fmt.Errorf("redis SET failed: %w", err)
	}
	metrics.IncCacheOperation("set", "success")
	return nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// NewRepository picks the backend named by cfg.Type. client may be nil for the memory backend.
func NewRepository(cfg config.CacheConfig, client redis.UniversalClient) (Repository, error) {
	switch cfg.Type {
	case constants.CacheTypeRedis:
		if client == nil {
			return nil, fmt.Errorf("redis cache selected but no redis client configured")
		}
		return NewRedisRepository(client, cfg.Redis.TTLSeconds), nil
	case constants.CacheTypeMemory, "":
		return NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
