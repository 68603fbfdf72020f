package clog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// NamespaceKey 是日志中命名空间的字段名
const NamespaceKey = "namespace"

// logger 是 Logger 接口的 slog 实现（非导出）
type logger struct {
	slogger   *slog.Logger
	leveler   *slog.LevelVar
	namespace string
}

// newLogger 创建日志实例（内部函数）
func newLogger(cfg *Config, opts *options) (Logger, error) {
	w, err := openOutput(cfg.Output)
	if err != nil {
		return nil, err
	}

	level, _ := ParseLevel(cfg.Level)
	leveler := &slog.LevelVar{}
	leveler.Set(level.toSlogLevel())

	handlerOpts := &slog.HandlerOptions{
		Level:     leveler,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	l := &logger{
		slogger: slog.New(handler),
		leveler: leveler,
	}

	if ns := strings.Join(opts.namespaceParts, "."); ns != "" {
		return l.WithNamespace(ns), nil
	}
	return l, nil
}

// openOutput 打开日志输出目标（内部使用）
func openOutput(output string) (io.Writer, error) {
	switch output {
	case "stdout", "":
		return os.Stdout, nil
	case "stderr":
		return os.Stderr, nil
	case "discard":
		return io.Discard, nil
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		return f, nil
	}
}

func (l *logger) log(level Level, msg string, fields ...Field) {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	l.slogger.Log(context.Background(), level.toSlogLevel(), msg, args...)
}

func (l *logger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *logger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *logger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *logger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

// Fatal 记录日志后终止进程
func (l *logger) Fatal(msg string, fields ...Field) {
	l.log(FatalLevel, msg, fields...)
	osExit(1)
}

// With 创建带有预设字段的子 Logger
func (l *logger) With(fields ...Field) Logger {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f)
	}
	return &logger{
		slogger:   l.slogger.With(args...),
		leveler:   l.leveler,
		namespace: l.namespace,
	}
}

// WithNamespace 创建扩展命名空间的子 Logger
func (l *logger) WithNamespace(parts ...string) Logger {
	ns := l.namespace
	for _, p := range parts {
		if p == "" {
			continue
		}
		if ns == "" {
			ns = p
		} else {
			ns = ns + "." + p
		}
	}
	if ns == l.namespace {
		return l
	}

	// namespace 作为普通字段输出，子 Logger 覆盖父级的值
	return &logger{
		slogger:   l.slogger.With(slog.String(NamespaceKey, ns)),
		leveler:   l.leveler,
		namespace: ns,
	}
}

// SetLevel 动态调整日志级别
// 注意：同一 handler 派生的所有子 Logger 共享级别
func (l *logger) SetLevel(level Level) error {
	l.leveler.Set(level.toSlogLevel())
	return nil
}

// osExit 可在测试中替换（内部使用）
var osExit = os.Exit
