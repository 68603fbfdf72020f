// Package metrics 为 Aegis 提供统一的指标收集能力。
// 基于 OpenTelemetry 标准构建，提供简洁的 Counter、Gauge 指标接口。
//
// 快速开始：
//
//	cfg := &metrics.Config{
//	    Enabled:     true,
//	    ServiceName: "aegis",
//	    Version:     "v1.0.0",
//	    Port:        9090,
//	    Path:        "/metrics",
//	}
//
//	meter, err := metrics.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer meter.Shutdown(ctx)
//
//	counter, _ := meter.Counter("fallback_activations_total", "降级激活总数")
//	counter.Inc(ctx, metrics.L("entity", "profile"))
package metrics

import "context"

// Counter 计数器接口
// 用于记录只能增加的累计值，例如降级激活数、主存储失败数等
type Counter interface {
	// Inc 将计数器增加 1
	Inc(ctx context.Context, labels ...Label)

	// Add 将计数器增加给定的值
	// 注意：传入负数会被监控系统忽略或报错
	Add(ctx context.Context, val float64, labels ...Label)
}

// Gauge 仪表盘接口
// 用于记录可以任意变化的瞬时值，例如当前熔断器状态
type Gauge interface {
	// Set 将 gauge 设置为给定的值，覆盖之前的值
	Set(ctx context.Context, val float64, labels ...Label)
}

// Meter 指标创建工厂接口
// 是所有指标类型的创建入口；通过 Meter 创建的指标是并发安全的
type Meter interface {
	// Counter 创建计数器
	Counter(name string, desc string) (Counter, error)

	// Gauge 创建仪表盘
	Gauge(name string, desc string) (Gauge, error)

	// Shutdown 关闭指标系统并刷新缓冲数据
	Shutdown(ctx context.Context) error
}
