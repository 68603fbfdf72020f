// Package cache 提供降级缓存组件，支持 Redis 和本地内存两种驱动。
//
// cache 是 Aegis 存储韧性层的次级存储：主存储不可用时协调器从这里
// 读取降级数据，写入时这里是"至少一份落盘"保证的第一站。组件只
// 存取字节序列，序列化由上层协调器负责，两种驱动可互换。
//
// 基本使用：
//
//	redisConn, _ := connector.NewRedis(redisConfig)
//	c, _ := cache.New(&cache.Config{
//	    Driver: cache.DriverRedis,
//	    Prefix: "fallback:",
//	}, cache.WithRedisConnector(redisConn), cache.WithLogger(logger))
//
//	err := c.Set(ctx, "learner-profile:tenant-1:user-42", data, time.Hour)
//	data, err := c.Get(ctx, "learner-profile:tenant-1:user-42")
//	if errors.Is(err, cache.ErrCacheMiss) { ... }
package cache

import (
	"context"
	"time"

	"github.com/studyloop/aegis/clog"
)

// Cache 定义降级缓存的核心能力
//
// 所有方法并发安全。Get 在键不存在或已过期时返回 ErrCacheMiss。
type Cache interface {
	// Set 写入键值，ttl <= 0 时表示不过期
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get 读取键值，未命中时返回 ErrCacheMiss
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete 删除键，键不存在时不报错
	Delete(ctx context.Context, key string) error

	// Has 判断键是否存在
	Has(ctx context.Context, key string) (bool, error)

	// Close 关闭缓存并释放资源（不关闭注入的连接器）
	Close() error
}

// New 根据配置创建缓存实例
//
// Driver 为 "memory" 时创建基于 otter 的本地内存缓存；
// 为 "redis"（或为空）时创建 Redis 缓存，此时必须通过
// WithRedisConnector 注入已连接的 Redis 连接器。
func New(cfg *Config, opts ...Option) (Cache, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.logger == nil {
		opt.logger = clog.Discard()
	}

	switch cfg.Driver {
	case DriverMemory:
		return newMemory(cfg, &opt)
	case DriverRedis:
		if opt.redisConn == nil {
			return nil, ErrConnectorNil
		}
		return newRedis(opt.redisConn, cfg, &opt)
	default:
		return nil, ErrUnknownDriver
	}
}
