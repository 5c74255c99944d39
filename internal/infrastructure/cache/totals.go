package cache

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"gift_tracker/pkg/contextx"
	"gift_tracker/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const typeTotalsKey = "gift_tracker:type_totals"

// RedisTotalsCache keeps the per-type aggregate in Redis for a short TTL and
// is invalidated on every create, so /api/gifts/types stays cheap without a
// stored counter. Any Redis failure degrades to a cache miss.
type RedisTotalsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTotalsCache(client *redis.Client, ttl time.Duration) *RedisTotalsCache {
	return &RedisTotalsCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisTotalsCache) GetTypeTotals(ctx context.Context) (map[string]int64, bool) {
	payload, err := c.client.Get(ctx, typeTotalsKey).Bytes()
	if err != nil {
		if err != redis.Nil { //nolint:errorlint // redis.Nil is not wrapped
			logger(ctx).Error("totals cache get", logx.Error(err))
		}

		return nil, false
	}

	var totals map[string]int64
	if err := json.Unmarshal(payload, &totals); err != nil {
		logger(ctx).Error("totals cache unmarshal", logx.Error(err))
		return nil, false
	}

	return totals, true
}

func (c *RedisTotalsCache) SetTypeTotals(ctx context.Context, totals map[string]int64) {
	payload, err := json.Marshal(totals)
	if err != nil {
		logger(ctx).Error("totals cache marshal", logx.Error(err))
		return
	}

	if err := c.client.Set(ctx, typeTotalsKey, payload, c.ttl).Err(); err != nil {
		logger(ctx).Error("totals cache set", logx.Error(err))
	}
}

func (c *RedisTotalsCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, typeTotalsKey).Err(); err != nil {
		logger(ctx).Error("totals cache invalidate", logx.Error(err))
	}
}
