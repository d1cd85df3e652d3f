package cache

import (
	"context"
	"sync"

	"promofeed/pkg/metrics"
	"promofeed/pkg/models"
)

type MemoryRepository struct {
	mu     sync.RWMutex
	frames map[string][]models.MessageRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{frames: make(map[string][]models.MessageRecord)}
}

func (r *MemoryRepository) Get(_ context.Context, frame string) ([]models.MessageRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs, ok := r.frames[frame]
	if !ok {
		metrics.IncCacheOperation("get", "miss")
		return nil, false, nil
	}
	metrics.IncCacheOperation("get", "hit")
	return append([]models.MessageRecord{}, msgs...), true, nil
}

func (r *MemoryRepository) Set(_ context.Context, frame string, msgs []models.MessageRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames[frame] = append([]models.MessageRecord{}, msgs...)
	metrics.IncCacheOperation("set", "success")
	return nil
}

func (r *MemoryRepository) Ping(context.Context) error {
	return nil
}
