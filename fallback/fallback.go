// Package fallback 提供存储降级协调器，是 Aegis 韧性层的核心组件。
//
// 协调器在主存储（MySQL）和次级缓存（Redis/内存）之间编排学习者
// 画像的读写，保证主存储的临时或永久故障既不阻止读取最近缓存的
// 画像，也不丢失写入：
//
//   - 读路径：熔断器放行时在有界超时内读主存储，成功后异步刷新
//     缓存；熔断器拒绝或主存储失败时降级读缓存。
//   - 写路径：先尽力写缓存，再在熔断器放行时写主存储；只要缓存
//     副本存在，主存储失败不向调用方报错（至少一份落盘语义）。
//   - 两边都没有数据时返回 nil（"不存在"是正常结果，不是错误）。
//
// 协调器从不因存储故障向调用方抛错；降级情况通过指标快照和日志
// 暴露，而不是通过返回值。
//
// ## 基本使用
//
//	coord, _ := fallback.New(primaryStore, cacheStore, &fallback.Config{
//	    CacheTTL:       time.Hour,
//	    PrimaryTimeout: 100 * time.Millisecond,
//	}, fallback.WithLogger(logger))
//
//	rec, _ := coord.GetProfile(ctx, "canvas-district-7", "lti-user-42")
//	_ = coord.SaveProfile(ctx, rec)
//	snap := coord.Metrics()
package fallback

import (
	"context"
	"time"

	"github.com/studyloop/aegis/breaker"
	"github.com/studyloop/aegis/cache"
	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/fallback/serializer"
	"github.com/studyloop/aegis/profile"
	"github.com/studyloop/aegis/store"
	"github.com/studyloop/aegis/xerrors"
)

// Coordinator 存储降级协调器核心接口
//
// 所有方法并发安全；同一复合键的并发读写不做串行化，
// 上游保证单写者语义，后写覆盖是可接受的结果。
type Coordinator interface {
	// GetProfile 读取画像记录
	//
	// 主存储和缓存都没有数据时返回 (nil, nil)；存储故障从不通过
	// error 暴露，只有参数校验失败才返回错误。
	GetProfile(ctx context.Context, tenantID, subject string) (*profile.LearnerProfile, error)

	// SaveProfile 写入画像记录
	//
	// 先写缓存再写主存储；缓存副本写入后主存储故障不报错。
	// 只有参数校验失败才返回错误。
	SaveProfile(ctx context.Context, rec *profile.LearnerProfile) error

	// Metrics 返回当前指标快照
	Metrics() Snapshot

	// ResetCircuit 强制熔断器回到 closed 并清零指标计数器
	// 运维/测试专用
	ResetCircuit()
}

// Config 协调器配置
type Config struct {
	// EntityType 缓存键中的实体类型段（默认：learner-profile）
	EntityType string `json:"entity_type" yaml:"entity_type" mapstructure:"entity_type"`

	// CacheTTL 缓存条目的存活时间（默认：24h）
	// 过期条目等同于缓存未命中
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl" mapstructure:"cache_ttl"`

	// PrimaryTimeout 主存储单次调用的有界超时（默认：100ms）
	// 超时等同于显式失败，协调器立即降级
	PrimaryTimeout time.Duration `json:"primary_timeout" yaml:"primary_timeout" mapstructure:"primary_timeout"`

	// CacheTimeout 缓存单次调用的有界超时（默认：50ms）
	// 缓存故障被吞掉，只记日志
	CacheTimeout time.Duration `json:"cache_timeout" yaml:"cache_timeout" mapstructure:"cache_timeout"`

	// Serializer 缓存条目序列化器：json 或 msgpack（默认：json）
	Serializer string `json:"serializer" yaml:"serializer" mapstructure:"serializer"`

	// Breaker 熔断器配置，nil 时使用熔断器默认值
	Breaker *breaker.Config `json:"breaker" yaml:"breaker" mapstructure:"breaker"`
}

// setDefaults 设置默认值（内部使用）
func (c *Config) setDefaults() {
	if c.EntityType == "" {
		c.EntityType = "learner-profile"
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 24 * time.Hour
	}
	if c.PrimaryTimeout <= 0 {
		c.PrimaryTimeout = 100 * time.Millisecond
	}
	if c.CacheTimeout <= 0 {
		c.CacheTimeout = 50 * time.Millisecond
	}
	if c.Breaker == nil {
		c.Breaker = breaker.DefaultConfig()
	}
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// 错误定义
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("fallback: config is nil")

	// ErrPrimaryNil 主存储为空
	ErrPrimaryNil = xerrors.New("fallback: primary store is nil")

	// ErrCacheNil 缓存为空
	ErrCacheNil = xerrors.New("fallback: cache is nil")
)

// New 创建存储降级协调器
//
// primary 和 secondary 是必需的协作方，缺失时在启动期失败。
// 熔断器默认按 cfg.Breaker 构造，也可通过 WithBreaker 注入。
func New(primary store.Store, secondary cache.Cache, cfg *Config, opts ...Option) (Coordinator, error) {
	if primary == nil {
		return nil, ErrPrimaryNil
	}
	if secondary == nil {
		return nil, ErrCacheNil
	}
	if cfg == nil {
		return nil, ErrConfigNil
	}
	cfg.setDefaults()

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}

	logger := opt.logger
	if logger == nil {
		logger = clog.Discard()
	}

	ser, err := serializer.New(cfg.Serializer)
	if err != nil {
		return nil, err
	}

	brk := opt.brk
	if brk == nil {
		brk, err = breaker.New(cfg.Breaker, breaker.WithLogger(opt.rawLogger), breaker.WithMeter(opt.meter))
		if err != nil {
			return nil, err
		}
	}

	logger.Info("creating fallback coordinator",
		clog.String("entity_type", cfg.EntityType),
		clog.Duration("cache_ttl", cfg.CacheTTL),
		clog.Duration("primary_timeout", cfg.PrimaryTimeout),
		clog.String("serializer", serializerName(cfg.Serializer)))

	return newCoordinator(primary, secondary, brk, ser, cfg, logger, &opt)
}

// serializerName 规范化序列化器名称用于日志（内部使用）
func serializerName(s string) string {
	if s == "" {
		return "json"
	}
	return s
}
