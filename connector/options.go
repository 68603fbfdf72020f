package connector

import (
	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/metrics"
)

type options struct {
	logger clog.Logger
	meter  metrics.Meter
}

// Option 配置连接器的选项
type Option func(*options)

// applyDefaults 填充缺省依赖（内部使用）
func (o *options) applyDefaults() {
	if o.logger == nil {
		o.logger = clog.Discard()
	}
	if o.meter == nil {
		o.meter = metrics.Discard()
	}
}

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger.WithNamespace("connector")
		}
	}
}

// WithMeter 设置指标收集器
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}
