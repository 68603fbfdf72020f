package admin

import "github.com/studyloop/aegis/clog"

// Option 组件初始化选项函数
type Option func(*options)

// options 组件初始化选项配置（内部使用）
type options struct {
	logger clog.Logger
}

// WithLogger 设置 Logger，传入 nil 时使用 clog.Discard()
// 内部会自动添加 namespace: "admin"
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
		} else {
			o.logger = logger.WithNamespace("admin")
		}
	}
}
