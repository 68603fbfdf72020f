package fallback

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/studyloop/aegis/breaker"
	"github.com/studyloop/aegis/cache"
	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/fallback/serializer"
	"github.com/studyloop/aegis/metrics"
	"github.com/studyloop/aegis/profile"
	"github.com/studyloop/aegis/store"
	"github.com/studyloop/aegis/xerrors"
)

// coordinator Coordinator 实现（非导出）
type coordinator struct {
	primary   store.Store
	secondary cache.Cache
	brk       breaker.Breaker
	ser       serializer.Serializer
	cfg       *Config
	logger    clog.Logger

	// 指标计数器，原子累加，近似值可接受
	fallbackActivations atomic.Uint64
	primaryFailures     atomic.Uint64
	cacheHits           atomic.Uint64
	cacheMisses         atomic.Uint64

	// OTel 计数器，meter 未注入时为 nil
	mFallback metrics.Counter
	mFailures metrics.Counter
	mHits     metrics.Counter
	mMisses   metrics.Counter

	// refreshWG 跟踪在途的异步缓存刷新，测试中用于等待收敛
	refreshWG sync.WaitGroup
}

// newCoordinator 创建协调器实例（内部函数）
func newCoordinator(primary store.Store, secondary cache.Cache, brk breaker.Breaker,
	ser serializer.Serializer, cfg *Config, logger clog.Logger, opt *options) (Coordinator, error) {

	c := &coordinator{
		primary:   primary,
		secondary: secondary,
		brk:       brk,
		ser:       ser,
		cfg:       cfg,
		logger:    logger,
	}

	if opt.meter != nil {
		c.mFallback, _ = opt.meter.Counter(MetricFallbackActivations, "operations served from the secondary store")
		c.mFailures, _ = opt.meter.Counter(MetricPrimaryFailures, "primary store transport/timeout/server errors")
		c.mHits, _ = opt.meter.Counter(MetricCacheHits, "secondary store cache hits")
		c.mMisses, _ = opt.meter.Counter(MetricCacheMisses, "secondary store cache misses")
	}

	return c, nil
}

// cacheKey 派生缓存键：fallback:{entity-type}:{tenant}:{subject}
func (c *coordinator) cacheKey(tenantID, subject string) string {
	return fmt.Sprintf("fallback:%s:%s:%s", c.cfg.EntityType, tenantID, subject)
}

func (c *coordinator) GetProfile(ctx context.Context, tenantID, subject string) (*profile.LearnerProfile, error) {
	if tenantID == "" {
		return nil, profile.ErrTenantEmpty
	}
	if subject == "" {
		return nil, profile.ErrSubjectEmpty
	}

	key := c.cacheKey(tenantID, subject)

	// 熔断器拒绝时完全跳过主存储
	if !c.brk.Allow() {
		c.recordFallback()
		return c.readCache(ctx, key), nil
	}

	primaryCtx, cancel := context.WithTimeout(ctx, c.cfg.PrimaryTimeout)
	rec, err := c.primary.Fetch(primaryCtx, tenantID, subject)
	cancel()

	switch {
	case err == nil:
		c.brk.RecordSuccess()
		// 火忘式缓存刷新，失败不影响本次读取
		c.refreshCache(key, rec)
		return rec, nil

	case xerrors.Is(err, store.ErrNotFound):
		// "记录不存在"是成功结果，不推动熔断器
		c.brk.RecordSuccess()
		return nil, nil

	default:
		c.brk.RecordFailure()
		c.recordPrimaryFailure()
		c.logger.Warn("primary store read failed, falling back to cache",
			clog.String("tenant_id", tenantID),
			clog.String("subject", subject),
			clog.Error(err))
		c.recordFallback()
		return c.readCache(ctx, key), nil
	}
}

func (c *coordinator) SaveProfile(ctx context.Context, rec *profile.LearnerProfile) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	key := c.cacheKey(rec.TenantID, rec.Subject)

	// 先写缓存：尽力而为，失败只记日志
	c.writeCache(ctx, key, rec)

	// 熔断器拒绝时缓存副本即为成功
	if !c.brk.Allow() {
		c.recordFallback()
		return nil
	}

	primaryCtx, cancel := context.WithTimeout(ctx, c.cfg.PrimaryTimeout)
	err := c.primary.Save(primaryCtx, rec)
	cancel()

	if err != nil {
		c.brk.RecordFailure()
		c.recordPrimaryFailure()
		c.logger.Warn("primary store write failed, cache copy retained",
			clog.String("tenant_id", rec.TenantID),
			clog.String("subject", rec.Subject),
			clog.Error(err))
		c.recordFallback()
		return nil
	}

	c.brk.RecordSuccess()
	return nil
}

func (c *coordinator) Metrics() Snapshot {
	return Snapshot{
		FallbackActivations: c.fallbackActivations.Load(),
		PrimaryFailures:     c.primaryFailures.Load(),
		CacheHits:           c.cacheHits.Load(),
		CacheMisses:         c.cacheMisses.Load(),
		LastFailure:         c.brk.LastFailure(),
		CircuitState:        c.brk.State(),
	}
}

func (c *coordinator) ResetCircuit() {
	c.brk.Reset()
	c.fallbackActivations.Store(0)
	c.primaryFailures.Store(0)
	c.cacheHits.Store(0)
	c.cacheMisses.Store(0)
}

// readCache 降级读缓存，任何故障都按未命中吞掉（内部函数）
func (c *coordinator) readCache(ctx context.Context, key string) *profile.LearnerProfile {
	cacheCtx, cancel := context.WithTimeout(ctx, c.cfg.CacheTimeout)
	defer cancel()

	data, err := c.secondary.Get(cacheCtx, key)
	if err != nil {
		if !xerrors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn("cache read failed", clog.String("key", key), clog.Error(err))
		}
		c.recordCacheMiss()
		return nil
	}

	var rec profile.LearnerProfile
	if err := c.ser.Unmarshal(data, &rec); err != nil {
		c.logger.Warn("cache entry corrupted", clog.String("key", key), clog.Error(err))
		c.recordCacheMiss()
		return nil
	}

	c.recordCacheHit()
	return &rec
}

// writeCache 尽力写缓存，失败只记日志（内部函数）
func (c *coordinator) writeCache(ctx context.Context, key string, rec *profile.LearnerProfile) {
	data, err := c.ser.Marshal(rec)
	if err != nil {
		c.logger.Warn("cache entry marshal failed", clog.String("key", key), clog.Error(err))
		return
	}

	cacheCtx, cancel := context.WithTimeout(ctx, c.cfg.CacheTimeout)
	defer cancel()

	if err := c.secondary.Set(cacheCtx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Warn("cache write failed", clog.String("key", key), clog.Error(err))
	}
}

// refreshCache 异步用主存储的新鲜值刷新缓存（内部函数）
//
// 使用独立的后台 context：请求结束不应打断刷新。
func (c *coordinator) refreshCache(key string, rec *profile.LearnerProfile) {
	c.refreshWG.Add(1)
	go func() {
		defer c.refreshWG.Done()
		c.writeCache(context.Background(), key, rec)
	}()
}

func (c *coordinator) recordFallback() {
	c.fallbackActivations.Add(1)
	if c.mFallback != nil {
		c.mFallback.Inc(context.Background())
	}
}

func (c *coordinator) recordPrimaryFailure() {
	c.primaryFailures.Add(1)
	if c.mFailures != nil {
		c.mFailures.Inc(context.Background())
	}
}

func (c *coordinator) recordCacheHit() {
	c.cacheHits.Add(1)
	if c.mHits != nil {
		c.mHits.Inc(context.Background())
	}
}

func (c *coordinator) recordCacheMiss() {
	c.cacheMisses.Add(1)
	if c.mMisses != nil {
		c.mMisses.Inc(context.Background())
	}
}
