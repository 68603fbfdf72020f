package clog

// Option 日志组件选项函数
type Option func(*options)

// options 选项结构（内部使用）
type options struct {
	namespaceParts []string
}

// applyOptions 应用所有选项并返回结果（内部使用）
func applyOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithNamespace 设置初始命名空间
//
// 多个部分会以 "." 连接，如 WithNamespace("aegis", "fallback")
// 产生命名空间 "aegis.fallback"。
func WithNamespace(parts ...string) Option {
	return func(o *options) {
		o.namespaceParts = append(o.namespaceParts, parts...)
	}
}
