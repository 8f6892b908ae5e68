package repository

import (
	"context"
	"time"

	"IndexPulse/internal/domain/models"
	domrepo "IndexPulse/internal/domain/repository"
	"IndexPulse/pkg/cache"
)

// LatestCache keeps the most recent classification per instrument on a
// layered cache: an in-process TTL map serves reads, and when Redis backs the
// layer other replicas and restarts recover the latest state from it.
type LatestCache struct {
	store cache.Service
	ttl   time.Duration
}

func NewLatestCache(store cache.Service, ttl time.Duration) *LatestCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &LatestCache{store: store, ttl: ttl}
}

func (c *LatestCache) SetLatest(cl *models.Classification) {
	if cl == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = c.store.Set(ctx, latestKey(cl.Instrument), *cl, c.ttl)
}

func (c *LatestCache) Latest(instrument string) (*models.Classification, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var cl models.Classification
	if err := c.store.Get(ctx, latestKey(instrument), &cl); err != nil {
		return nil, false
	}
	return &cl, true
}

func latestKey(instrument string) string { return cache.GenerateKey("latest", instrument) }

var _ domrepo.LatestCache = (*LatestCache)(nil)
