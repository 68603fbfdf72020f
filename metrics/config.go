package metrics

// Config 指标系统的配置结构体
//
// 典型配置示例（YAML）：
//
//	metrics:
//	  enabled: true
//	  service_name: "aegis"
//	  version: "v1.0.0"
//	  port: 9090
//	  path: "/metrics"
type Config struct {
	// Enabled 是否启用指标收集
	// 为 false 时，metrics.New() 返回 noop Meter，所有操作都是空操作
	Enabled bool `mapstructure:"enabled"`

	// ServiceName 服务名称，作为 OpenTelemetry Resource 的 service.name 属性
	ServiceName string `mapstructure:"service_name"`

	// Version 服务版本，作为 service.version 属性
	Version string `mapstructure:"version"`

	// Port Prometheus HTTP 服务器监听的端口
	// 大于 0 时启动 HTTP 服务器暴露 Prometheus 格式指标
	Port int `mapstructure:"port"`

	// Path Prometheus 指标的 HTTP 路径（默认："/metrics"）
	Path string `mapstructure:"path"`
}

// setDefaults 设置默认值（内部使用）
func (c *Config) setDefaults() {
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

// NewDevDefaultConfig 返回适合本地开发与测试的默认配置
// 不启动 HTTP 服务器，仅在进程内注册指标
func NewDevDefaultConfig(service string) *Config {
	return &Config{
		Enabled:     true,
		ServiceName: service,
		Version:     "dev",
	}
}
