// Package clog 为 Aegis 提供基于 slog 的结构化日志组件。
//
// 特性：
//   - 抽象接口，不暴露底层实现（slog）
//   - 支持层级命名空间，便于区分组件日志
//   - 零外部依赖（仅依赖 Go 标准库）
//   - 采用函数式选项模式，与其他组件保持一致
//
// 基本使用：
//
//	logger, _ := clog.New(&clog.Config{
//	    Level:  "info",
//	    Format: "console",
//	    Output: "stdout",
//	})
//	logger.Info("coordinator ready", clog.String("entity", "profile"))
//
// 组件内部应通过 WithNamespace 派生子 Logger：
//
//	brkLogger := logger.WithNamespace("breaker")
package clog

import "fmt"

// New 创建一个新的 Logger 实例
//
// config - 日志配置，如果为 nil 会使用默认配置
// opts   - 函数式选项列表，用于设置命名空间等
func New(config *Config, opts ...Option) (Logger, error) {
	if config == nil {
		config = NewDevDefaultConfig("aegis")
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	options := applyOptions(opts...)

	return newLogger(config, options)
}

// MustNew 类似 New，但出错时 panic。仅用于初始化阶段。
func MustNew(config *Config, opts ...Option) Logger {
	logger, err := New(config, opts...)
	if err != nil {
		panic(fmt.Sprintf("clog: %v", err))
	}
	return logger
}

// NewDevDefaultConfig 返回适合本地开发的默认配置
func NewDevDefaultConfig(service string) *Config {
	return &Config{
		Level:  "debug",
		Format: "console",
		Output: "stdout",
	}
}
