package cache

import (
	"context"
	"time"

	"github.com/maypok86/otter/v2"
	"github.com/maypok86/otter/v2/stats"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/metrics"
	"github.com/studyloop/aegis/xerrors"
)

const (
	// memoryDefaultTTL 未指定 TTL 时使用的默认时间（100年，模拟永久）
	memoryDefaultTTL = 24 * 365 * 100 * time.Hour
)

type memoryCache struct {
	cache  *otter.Cache[string, []byte]
	prefix string
	logger clog.Logger
	meter  metrics.Meter
}

// newMemory 创建本地内存缓存实例（内部函数）
func newMemory(cfg *Config, opt *options) (Cache, error) {
	// 写入过期策略，与 Redis TTL 语义一致：
	// 过期时间从写入起算，读取不重置；具体 TTL 在 Set 时覆盖
	c, err := otter.New(&otter.Options[string, []byte]{
		MaximumSize:      cfg.Capacity,
		StatsRecorder:    stats.NewCounter(),
		ExpiryCalculator: otter.ExpiryWriting[string, []byte](memoryDefaultTTL),
	})
	if err != nil {
		return nil, xerrors.Wrap(err, "cache: failed to build otter cache")
	}

	return &memoryCache{
		cache:  c,
		prefix: cfg.Prefix,
		logger: opt.logger,
		meter:  opt.meter,
	}, nil
}

func (c *memoryCache) getKey(key string) string {
	return c.prefix + key
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	// 存副本，避免调用方后续修改切片影响缓存内容
	buf := make([]byte, len(value))
	copy(buf, value)

	k := c.getKey(key)
	c.cache.Set(k, buf)
	if ttl > 0 {
		c.cache.SetExpiresAfter(k, ttl)
	}
	return nil
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, ok := c.cache.GetIfPresent(c.getKey(key))
	if !ok {
		return nil, ErrCacheMiss
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	return buf, nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.cache.Invalidate(c.getKey(key))
	return nil
}

func (c *memoryCache) Has(ctx context.Context, key string) (bool, error) {
	_, ok := c.cache.GetIfPresent(c.getKey(key))
	return ok, nil
}

func (c *memoryCache) Close() error {
	c.cache.StopAllGoroutines()
	return nil
}
