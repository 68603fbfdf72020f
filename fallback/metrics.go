package fallback

import (
	"time"

	"github.com/studyloop/aegis/breaker"
)

// Metrics 指标常量定义
const (
	// MetricFallbackActivations 降级激活次数 (Counter)
	MetricFallbackActivations = "fallback_activations_total"

	// MetricPrimaryFailures 主存储失败次数 (Counter)
	MetricPrimaryFailures = "fallback_primary_failures_total"

	// MetricCacheHits 缓存命中次数 (Counter)
	MetricCacheHits = "fallback_cache_hits_total"

	// MetricCacheMisses 缓存未命中次数 (Counter)
	MetricCacheMisses = "fallback_cache_misses_total"
)

// Snapshot 指标快照
//
// 计数器单调递增（仅 ResetCircuit 清零），对外只读；
// 计数采用原子累加，并发下允许近似值。
type Snapshot struct {
	// FallbackActivations 由缓存承接（主路径被跳过或失败）的操作数
	FallbackActivations uint64 `json:"fallback_activations"`

	// PrimaryFailures 主存储传输/超时/服务端错误数（"不存在"不计入）
	PrimaryFailures uint64 `json:"primary_failures"`

	// CacheHits 缓存命中数
	CacheHits uint64 `json:"cache_hits"`

	// CacheMisses 缓存未命中数（含被吞掉的缓存故障）
	CacheMisses uint64 `json:"cache_misses"`

	// LastFailure 最近一次主存储失败时间，从未失败时为零值
	LastFailure time.Time `json:"last_failure"`

	// CircuitState 当前熔断器状态
	CircuitState breaker.State `json:"circuit_state"`
}
