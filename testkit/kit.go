// Package testkit 提供跨包共享的测试依赖装配。
package testkit

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/metrics"
)

// Kit 包含通用的测试依赖
type Kit struct {
	Ctx    context.Context
	Logger clog.Logger
	Meter  metrics.Meter
}

// NewKit 返回一个包含默认依赖的测试工具包
func NewKit(t *testing.T) *Kit {
	return &Kit{
		Ctx:    context.Background(),
		Logger: NewLogger(),
		Meter:  NewMeter(),
	}
}

// NewLogger 返回一个用于测试的 logger
// 输出到开发环境格式，适合本地调试
func NewLogger() clog.Logger {
	logger, err := clog.New(clog.NewDevDefaultConfig("aegis"))
	if err != nil {
		return clog.Discard()
	}
	return logger
}

// NewMeter 返回一个用于测试的 meter
// 使用 Discard 模式，不实际输出指标
func NewMeter() metrics.Meter {
	return metrics.Discard()
}

// NewID 返回一个随机测试标识，用于租户/subject 等字段
func NewID() string {
	return uuid.NewString()
}
