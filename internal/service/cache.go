package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"learner_analytics_backend/pkg/logger"
	"learner_analytics_backend/pkg/monitoring"
)

// Cache 派生结果缓存。账本是唯一事实来源，缓存丢失只影响性能。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// RedisCache Cache 的 redis 实现。读写失败都只记日志降级为未命中，
// 分析接口不因缓存故障而不可用。
type RedisCache struct {
	Client *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{Client: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	data, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		monitoring.CacheMisses.Inc()
		return nil, false
	}
	monitoring.CacheHits.Inc()
	return data, true
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := c.Client.Set(ctx, key, value, ttl).Err(); err != nil {
		logger.Log.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// cacheKey 由全部计算输入派生缓存键。version 取最近一条样本/会话的
// 时间戳：账本追加后键随之变化，旧键靠 TTL 过期，无需显式失效。
func cacheKey(kind string, userID uint, categoryID *string, version time.Time, extras ...int64) string {
	category := "overall"
	if categoryID != nil {
		category = *categoryID
	}
	key := fmt.Sprintf("analytics:%s:%d:%s:%d", kind, userID, category, version.UnixMilli())
	for _, e := range extras {
		key = fmt.Sprintf("%s:%d", key, e)
	}
	return key
}
