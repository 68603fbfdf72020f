package cache

import (
	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/connector"
	"github.com/studyloop/aegis/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

// options 组件初始化选项配置（内部使用）
type options struct {
	logger    clog.Logger
	meter     metrics.Meter
	redisConn connector.RedisConnector
}

// WithLogger 设置 Logger，传入 nil 时使用 clog.Discard()
// 内部会自动添加 namespace: "cache"
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = logger.WithNamespace("cache")
		}
	}
}

// WithMeter 注入指标 Meter
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithRedisConnector 注入 Redis 连接器（Redis 驱动必需）
//
// 缓存组件只借用连接，Close 时不会关闭连接器，
// 连接器的生命周期由调用方管理。
func WithRedisConnector(conn connector.RedisConnector) Option {
	return func(o *options) {
		o.redisConn = conn
	}
}
