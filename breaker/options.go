package breaker

import (
	"time"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

// options 组件初始化选项配置（内部使用）
type options struct {
	logger        clog.Logger
	meter         metrics.Meter
	onStateChange func(from, to State)
	now           func() time.Time
}

// WithLogger 设置 Logger，传入 nil 时使用 clog.Discard()
// 内部会自动添加 namespace: "breaker"
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = logger.WithNamespace("breaker")
		}
	}
}

// WithMeter 注入指标 Meter，用于上报状态转换计数与当前状态
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithClock 替换时间源，默认 time.Now
//
// 用于测试中模拟冷却时间流逝，生产代码无需设置。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithStateChange 设置状态转换回调
//
// 回调在状态转换时同步执行；回调内不得调用熔断器自身的方法，
// 否则会死锁。
func WithStateChange(fn func(from, to State)) Option {
	return func(o *options) {
		o.onStateChange = fn
	}
}
