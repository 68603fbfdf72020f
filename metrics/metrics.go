package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"

	"github.com/studyloop/aegis/clog"
)

// ============================================================================
// 工厂函数
// ============================================================================

// New 创建 Meter 实例
// 返回值实现 Meter 接口，用于创建和记录指标
func New(cfg *Config, opts ...Option) (Meter, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	if !cfg.Enabled {
		return &noopMeter{}, nil
	}
	cfg.setDefaults()

	options := &options{}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger
	if logger == nil {
		logger = clog.Discard()
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(cfg.Version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	prometheusExporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(prometheusExporter),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	// 启动 Prometheus HTTP 服务器
	if cfg.Port > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Port)
			mux := http.NewServeMux()
			mux.Handle(cfg.Path, promhttp.Handler())
			httpServer := &http.Server{
				Addr:    addr,
				Handler: mux,
			}
			logger.Info("starting prometheus metrics server",
				clog.String("addr", addr),
				clog.String("path", cfg.Path))
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("prometheus server error", clog.Error(err))
			}
		}()
	}

	return &meterImpl{
		meter:    mp.Meter("aegis"),
		provider: mp,
		config:   cfg,
	}, nil
}

// Must 类似 New，但出错时 panic。仅用于初始化阶段。
func Must(cfg *Config, opts ...Option) Meter {
	m, err := New(cfg, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create metrics: %v", err))
	}
	return m
}

// Discard 返回一个静默的 Meter 实例，所有操作均为空操作
func Discard() Meter {
	return &noopMeter{}
}

// ============================================================================
// Meter 实现
// ============================================================================

// meterImpl 实现 Meter 接口
type meterImpl struct {
	meter    metric.Meter
	provider *sdkmetric.MeterProvider
	config   *Config
}

// Counter 创建计数器
func (m *meterImpl) Counter(name string, desc string) (Counter, error) {
	c, err := m.meter.Float64Counter(name, metric.WithDescription(desc))
	if err != nil {
		return nil, fmt.Errorf("failed to create counter %s: %w", name, err)
	}
	return &counterImpl{counter: c}, nil
}

// Gauge 创建仪表盘
func (m *meterImpl) Gauge(name string, desc string) (Gauge, error) {
	g, err := m.meter.Float64Gauge(name, metric.WithDescription(desc))
	if err != nil {
		return nil, fmt.Errorf("failed to create gauge %s: %w", name, err)
	}
	return &gaugeImpl{gauge: g}, nil
}

// Shutdown 关闭 Meter Provider
func (m *meterImpl) Shutdown(ctx context.Context) error {
	return m.provider.Shutdown(ctx)
}

// ============================================================================
// 指标实现
// ============================================================================

type counterImpl struct {
	counter metric.Float64Counter
}

func (c *counterImpl) Inc(ctx context.Context, labels ...Label) {
	c.counter.Add(ctx, 1, metric.WithAttributes(toAttributes(labels)...))
}

func (c *counterImpl) Add(ctx context.Context, val float64, labels ...Label) {
	c.counter.Add(ctx, val, metric.WithAttributes(toAttributes(labels)...))
}

type gaugeImpl struct {
	gauge metric.Float64Gauge
}

func (g *gaugeImpl) Set(ctx context.Context, val float64, labels ...Label) {
	g.gauge.Record(ctx, val, metric.WithAttributes(toAttributes(labels)...))
}

// toAttributes 将标签转换为 OTel 属性（内部使用）
func toAttributes(labels []Label) []attribute.KeyValue {
	if len(labels) == 0 {
		return nil
	}
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for _, l := range labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	return attrs
}

// ============================================================================
// Noop 实现
// ============================================================================

type noopMeter struct{}

func (n *noopMeter) Counter(name string, desc string) (Counter, error) {
	return &noopCounter{}, nil
}

func (n *noopMeter) Gauge(name string, desc string) (Gauge, error) {
	return &noopGauge{}, nil
}

func (n *noopMeter) Shutdown(ctx context.Context) error {
	return nil
}

type noopCounter struct{}

func (n *noopCounter) Inc(ctx context.Context, labels ...Label)              {}
func (n *noopCounter) Add(ctx context.Context, val float64, labels ...Label) {}

type noopGauge struct{}

func (n *noopGauge) Set(ctx context.Context, val float64, labels ...Label) {}
