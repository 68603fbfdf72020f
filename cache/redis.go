package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/connector"
	"github.com/studyloop/aegis/metrics"
	"github.com/studyloop/aegis/xerrors"
)

type redisCache struct {
	client *redis.Client
	prefix string
	logger clog.Logger
	meter  metrics.Meter
}

// newRedis 创建 Redis 缓存实例（内部函数）
func newRedis(conn connector.RedisConnector, cfg *Config, opt *options) (Cache, error) {
	client := conn.GetClient()
	if client == nil {
		return nil, xerrors.New("cache: redis connector is not connected")
	}

	return &redisCache{
		client: client,
		prefix: cfg.Prefix,
		logger: opt.logger,
		meter:  opt.meter,
	}, nil
}

func (c *redisCache) getKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if err := c.client.Set(ctx, c.getKey(key), value, ttl).Err(); err != nil {
		return xerrors.Wrapf(err, "cache: set %s", key)
	}
	return nil
}

func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.getKey(key)).Bytes()
	if err != nil {
		if xerrors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, xerrors.Wrapf(err, "cache: get %s", key)
	}
	return data, nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.getKey(key)).Err(); err != nil {
		return xerrors.Wrapf(err, "cache: delete %s", key)
	}
	return nil
}

func (c *redisCache) Has(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, c.getKey(key)).Result()
	if err != nil {
		return false, xerrors.Wrapf(err, "cache: exists %s", key)
	}
	return n > 0, nil
}

// Close 释放缓存自身资源；注入的连接由连接器的持有者关闭
func (c *redisCache) Close() error {
	return nil
}
