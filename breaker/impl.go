package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/metrics"
)

// circuitBreaker 熔断器实现（非导出）
//
// 所有可变状态由单个互斥锁保护，Allow/RecordSuccess/RecordFailure
// 的"读取-判断-修改"序列在锁内完成，相对并发调用方原子。
type circuitBreaker struct {
	cfg    *Config
	logger clog.Logger

	mu             sync.Mutex
	state          State
	failures       int       // closed 状态下的连续失败计数
	probesAdmitted int       // half_open 状态下已放行的探测数
	probeSuccesses int       // half_open 状态下的连续成功数
	lastFailure    time.Time // 最近一次失败时间

	// now 可在测试中替换以控制时钟
	now func() time.Time

	onStateChange func(from, to State)
	transitions   metrics.Counter
	stateGauge    metrics.Gauge
}

// newBreaker 创建熔断器实例（内部函数）
func newBreaker(cfg *Config, logger clog.Logger, opt *options) (Breaker, error) {
	b := &circuitBreaker{
		cfg:           cfg,
		logger:        logger,
		state:         StateClosed,
		now:           time.Now,
		onStateChange: opt.onStateChange,
	}
	if opt.now != nil {
		b.now = opt.now
	}

	if opt.meter != nil {
		b.transitions, _ = opt.meter.Counter(MetricStateChanges, "circuit breaker state transitions")
		b.stateGauge, _ = opt.meter.Gauge(MetricState, "current circuit breaker state (0=closed 1=half_open 2=open)")
	}

	return b, nil
}

// Allow 判断当前是否允许向主存储发起请求
func (b *circuitBreaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		return true

	case StateOpen:
		// 冷却时间到期后转入半开并放行第一个探测
		if b.now().Sub(b.lastFailure) > b.cfg.ResetTimeout {
			b.transitionTo(StateHalfOpen)
			b.probesAdmitted = 1
			b.probeSuccesses = 0
			return true
		}
		return false

	case StateHalfOpen:
		if b.probesAdmitted < b.cfg.HalfOpenProbes {
			b.probesAdmitted++
			return true
		}
		return false

	default:
		return false
	}
}

// RecordSuccess 回报一次成功的主存储调用
func (b *circuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0

	case StateHalfOpen:
		b.probeSuccesses++
		if b.probeSuccesses >= b.cfg.HalfOpenProbes {
			b.transitionTo(StateClosed)
			b.resetCountersLocked()
		}
	}
	// open 状态下的迟到成功（探测窗口之外的在途调用）不影响状态
}

// RecordFailure 回报一次失败的主存储调用
func (b *circuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastFailure = b.now()

	switch b.state {
	case StateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.transitionTo(StateOpen)
		}

	case StateHalfOpen:
		// 任何探测失败立即重新熔断
		b.transitionTo(StateOpen)
		b.probesAdmitted = 0
		b.probeSuccesses = 0
	}
}

// State 返回当前熔断器状态
func (b *circuitBreaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// LastFailure 返回最近一次失败的时间
func (b *circuitBreaker) LastFailure() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastFailure
}

// Reset 手动重置熔断器状态为 closed 并清零所有计数器
func (b *circuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateClosed {
		b.transitionTo(StateClosed)
	}
	b.resetCountersLocked()
	b.lastFailure = time.Time{}

	b.logger.Info("circuit breaker manually reset")
}

// resetCountersLocked 清零所有计数器，调用方必须持有锁（内部使用）
func (b *circuitBreaker) resetCountersLocked() {
	b.failures = 0
	b.probesAdmitted = 0
	b.probeSuccesses = 0
}

// transitionTo 状态转换，调用方必须持有锁（内部使用）
// 注意：回调在锁内同步执行，不得回调熔断器自身的方法
func (b *circuitBreaker) transitionTo(newState State) {
	oldState := b.state
	if oldState == newState {
		return
	}
	b.state = newState

	b.logger.Info("circuit breaker state changed",
		clog.String("from", oldState.String()),
		clog.String("to", newState.String()))

	if b.transitions != nil {
		b.transitions.Inc(context.Background(),
			metrics.L(LabelFromState, oldState.String()),
			metrics.L(LabelToState, newState.String()))
	}
	if b.stateGauge != nil {
		b.stateGauge.Set(context.Background(), stateValue(newState))
	}

	if b.onStateChange != nil {
		b.onStateChange(oldState, newState)
	}
}

// stateValue 将状态映射为 gauge 数值（内部使用）
func stateValue(s State) float64 {
	switch s {
	case StateClosed:
		return 0
	case StateHalfOpen:
		return 1
	case StateOpen:
		return 2
	default:
		return -1
	}
}
