package clog

// Logger 日志接口，提供结构化日志记录功能
//
// 支持五个日志级别：Debug、Info、Warn、Error、Fatal。
// Fatal 在记录日志后终止进程。
//
// 创建子 Logger：
//
//	childLogger := logger.With(clog.String("tenant", "canvas-101"))
//	namespacedLogger := logger.WithNamespace("fallback")
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// With 创建一个带有预设字段的子 Logger
	//
	// 预设的字段会出现在该子 Logger 的所有日志中。
	With(fields ...Field) Logger

	// WithNamespace 创建一个扩展命名空间的子 Logger
	//
	// 命名空间会追加到现有的命名空间后面，以 "." 连接，
	// 并作为 namespace 字段输出在每条日志中。
	WithNamespace(parts ...string) Logger

	// SetLevel 动态调整日志级别，不需要重新创建 Logger
	SetLevel(level Level) error
}
