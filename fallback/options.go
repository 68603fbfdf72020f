package fallback

import (
	"github.com/studyloop/aegis/breaker"
	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/metrics"
)

// Option 组件初始化选项函数
type Option func(*options)

// options 组件初始化选项配置（内部使用）
type options struct {
	logger    clog.Logger // 已加 fallback namespace
	rawLogger clog.Logger // 原始 logger，传给内部构造的熔断器
	meter     metrics.Meter
	brk       breaker.Breaker
}

// WithLogger 设置 Logger，传入 nil 时使用 clog.Discard()
// 内部会自动添加 namespace: "fallback"
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
			o.rawLogger = nil
		} else {
			o.logger = logger.WithNamespace("fallback")
			o.rawLogger = logger
		}
	}
}

// WithMeter 注入指标 Meter，用于上报降级/失败/命中计数
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithBreaker 注入外部构造的熔断器，替代按 Config.Breaker 内部构造
//
// 用于一个熔断器服务多个协调器的场景和测试中的时钟控制。
func WithBreaker(brk breaker.Breaker) Option {
	return func(o *options) {
		o.brk = brk
	}
}
