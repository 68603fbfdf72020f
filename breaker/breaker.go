// Package breaker 提供熔断器组件，专注于主存储的故障隔离与自动恢复。
//
// breaker 是 Aegis 存储韧性层的核心组件，它提供了：
//   - 连续失败计数触发的熔断（closed → open）
//   - 冷却时间到期后的半开探测（open → half_open）
//   - 连续探测成功后的自动恢复（half_open → closed）
//   - 运维场景的手动重置（Reset 强制回到 closed）
//
// 熔断器是纯粹的决策/记账对象：它不执行被保护的调用，不重试，
// 不阻塞，也不会抛出错误。调用方在每次主存储访问前调用 Allow()，
// 并在访问结束后通过 RecordSuccess()/RecordFailure() 回报结果。
//
// ## 基本使用
//
//	brk, _ := breaker.New(&breaker.Config{
//		FailureThreshold: 5,
//		ResetTimeout:     60 * time.Second,
//		HalfOpenProbes:   3,
//	}, breaker.WithLogger(logger))
//
//	if brk.Allow() {
//		err := primary.Fetch(ctx, tenant, subject)
//		if err != nil {
//			brk.RecordFailure()
//		} else {
//			brk.RecordSuccess()
//		}
//	}
package breaker

import (
	"time"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/xerrors"
)

// ========================================
// 接口定义 (Interface Definitions)
// ========================================

// Breaker 熔断器核心接口
//
// 所有方法均为并发安全；状态转换相对并发调用方是原子的。
type Breaker interface {
	// Allow 判断当前是否允许向主存储发起请求
	//
	// closed 状态恒为 true；open 状态在冷却时间到期前为 false，
	// 到期后转入 half_open 并放行有限数量的探测请求；
	// half_open 状态只放行尚未用完的探测名额。
	Allow() bool

	// RecordSuccess 回报一次成功的主存储调用
	//
	// closed 状态下清零失败计数；half_open 状态下累计探测成功数，
	// 达到配置的探测数后关闭熔断器。
	RecordSuccess()

	// RecordFailure 回报一次失败的主存储调用
	//
	// 只应针对传输/超时/服务端错误调用；"记录不存在"是成功结果。
	// closed 状态下连续失败达到阈值时熔断；half_open 状态下任何
	// 失败立即重新熔断。
	RecordFailure()

	// State 返回当前熔断器状态
	State() State

	// LastFailure 返回最近一次失败的时间，从未失败时为零值
	LastFailure() time.Time

	// Reset 手动重置熔断器状态为 closed 并清零所有计数器
	// 用于运维场景的强制恢复和测试
	Reset()
}

// State 熔断器状态
type State string

const (
	StateClosed   State = "closed"    // 正常状态，请求正常通过
	StateOpen     State = "open"      // 熔断状态，请求快速失败
	StateHalfOpen State = "half_open" // 半开状态，允许少量探测请求
)

// String 返回状态的字符串表示
func (s State) String() string {
	return string(s)
}

// ========================================
// 配置定义 (Configuration)
// ========================================

// Config 熔断器配置，构造后不可变
type Config struct {
	// FailureThreshold closed 状态下触发熔断的连续失败次数（默认：5）
	FailureThreshold int `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold"`

	// ResetTimeout open 状态持续时间（默认：60s）
	// 自最近一次失败起经过此时间后允许半开探测
	ResetTimeout time.Duration `json:"reset_timeout" yaml:"reset_timeout" mapstructure:"reset_timeout"`

	// HalfOpenProbes half_open 状态下放行的探测请求数，
	// 也是恢复 closed 所需的连续成功数（默认：1）
	HalfOpenProbes int `json:"half_open_probes" yaml:"half_open_probes" mapstructure:"half_open_probes"`
}

// setDefaults 设置默认值（内部使用）
func (c *Config) setDefaults() {
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = 5
	}
	if c.ResetTimeout <= 0 {
		c.ResetTimeout = 60 * time.Second
	}
	if c.HalfOpenProbes <= 0 {
		c.HalfOpenProbes = 1
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
	ErrConfigNil = xerrors.New("breaker: config is nil")
)

// ========================================
// 工厂函数 (Factory Functions)
// ========================================

// New 创建熔断器实例
//
// 参数:
//   - cfg: 熔断器配置
//   - opts: 可选参数 (Logger, Meter, StateChange 回调)
//
// 使用示例:
//
//	brk, _ := breaker.New(&breaker.Config{
//		FailureThreshold: 5,
//		ResetTimeout:     60 * time.Second,
//		HalfOpenProbes:   3,
//	}, breaker.WithLogger(logger))
func New(cfg *Config, opts ...Option) (Breaker, error) {
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

	logger.Info("creating circuit breaker",
		clog.Int("failure_threshold", cfg.FailureThreshold),
		clog.Duration("reset_timeout", cfg.ResetTimeout),
		clog.Int("half_open_probes", cfg.HalfOpenProbes))

	return newBreaker(cfg, logger, &opt)
}
