package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promofeed/internal/config"
	"promofeed/pkg/models"
)

func records() []models.MessageRecord {
	return []models.MessageRecord{
		{ID: "1", Code: "A", Message: "A", Severity: models.SeveritySuccess, Timestamp: time.Unix(100, 0).UTC()},
		{ID: "2", Code: "B", Message: "B", Severity: models.SeveritySuccess, Timestamp: time.Unix(50, 0).UTC()},
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, ok, err := repo.Get(ctx, "all")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.Set(ctx, "all", records()))
	got, ok, err := repo.Get(ctx, "all")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, records(), got)

	got[0].Code = "changed"
	again, _, _ := repo.Get(ctx, "all")
	assert.Equal(t, "A", again[0].Code)

	require.NoError(t, repo.Set(ctx, "hour", nil))
	empty, ok, err := repo.Get(ctx, "hour")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, empty)

	assert.NoError(t, repo.Ping(ctx))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "feed:frame:6hours", Key("6hours"))
}

func TestNewRepository(t *testing.T) {
	repo, err := NewRepository(config.CacheConfig{Type: "memory"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryRepository{}, repo)

	_, err = NewRepository(config.CacheConfig{Type: "redis"}, nil)
	assert.Error(t, err)

	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	repo, err = NewRepository(config.CacheConfig{Type: "redis", Redis: config.RedisConfig{TTLSeconds: 60}}, client)
	require.NoError(t, err)
	require.IsType(t, &RedisRepository{}, repo)
	assert.Equal(t, time.Minute, repo.(*RedisRepository).ttl)

	_, err = NewRepository(config.CacheConfig{Type: "memcached"}, nil)
	assert.Error(t, err)
}
