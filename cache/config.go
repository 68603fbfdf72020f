package cache

// Driver 缓存驱动类型
type Driver string

const (
	// DriverRedis Redis 驱动，跨进程共享，适合生产环境
	DriverRedis Driver = "redis"

	// DriverMemory 本地内存驱动（otter），适合单实例部署和测试
	DriverMemory Driver = "memory"
)

// Config 缓存配置
type Config struct {
	// Driver 缓存驱动（默认：redis）
	Driver Driver `json:"driver" yaml:"driver" mapstructure:"driver"`

	// Prefix 键前缀，用于多应用共享一个 Redis 实例时的隔离
	Prefix string `json:"prefix" yaml:"prefix" mapstructure:"prefix"`

	// Capacity 内存驱动的最大条目数（默认：10000），Redis 驱动忽略
	Capacity int `json:"capacity" yaml:"capacity" mapstructure:"capacity"`
}

// setDefaults 设置默认值（内部使用）
func (c *Config) setDefaults() {
	if c.Driver == "" {
		c.Driver = DriverRedis
	}
	if c.Capacity <= 0 {
		c.Capacity = 10000
	}
}

// validate 校验配置（内部使用）
func (c *Config) validate() error {
	switch c.Driver {
	case DriverRedis, DriverMemory:
		return nil
	default:
		return ErrUnknownDriver
	}
}

// DefaultConfig 返回默认配置（Redis 驱动）
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}
