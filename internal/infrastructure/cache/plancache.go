package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace/internal/application/licensing"
	"marketplace/internal/shared/logger"
)

const (
	planCacheKey = "licensing:plans"
	planCacheTTL = 30 * time.Minute
)

// PlanCache keeps the license-platform catalog in redis so plan
// listings and webhook verification do not hit the platform on every
// request. Cache failures are logged and treated as misses.
type PlanCache struct {
	client *redis.Client
	logger logger.Interface
}

func NewPlanCache(client *redis.Client, log logger.Interface) *PlanCache {
	return &PlanCache{
		client: client,
		logger: log,
	}
}

func (c *PlanCache) Get(ctx context.Context) ([]licensing.Plan, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, planCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warnw("plan cache read failed", "error", err)
		}
		return nil, false
	}
	var plans []licensing.Plan
	if err := json.Unmarshal(raw, &plans); err != nil {
		c.logger.Warnw("plan cache entry corrupt, dropping", "error", err)
		c.Invalidate(ctx)
		return nil, false
	}
	return plans, true
}

func (c *PlanCache) Set(ctx context.Context, plans []licensing.Plan) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(plans)
	if err != nil {
		c.logger.Warnw("plan cache marshal failed", "error", err)
		return
	}
	if err := c.client.Set(ctx, planCacheKey, raw, planCacheTTL).Err(); err != nil {
		c.logger.Warnw("plan cache write failed", "error", err)
	}
}

func (c *PlanCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, planCacheKey).Err(); err != nil {
		c.logger.Warnw("plan cache invalidate failed", "error", err)
	}
}
