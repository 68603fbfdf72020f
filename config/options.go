package config

// Options 配置加载器选项
type Options struct {
	// Name 配置文件名（不含扩展名），默认 "config"
	Name string

	// FileType 配置文件类型，默认 "yaml"
	FileType string

	// Paths 配置文件搜索路径列表，默认 ["."]
	Paths []string

	// EnvPrefix 环境变量前缀，默认 "AEGIS"
	EnvPrefix string
}

// Option 选项函数
type Option func(*Options)

// defaultOptions 返回默认选项（内部使用）
func defaultOptions() *Options {
	return &Options{
		Name:      "config",
		FileType:  "yaml",
		Paths:     []string{"."},
		EnvPrefix: "AEGIS",
	}
}

// WithConfigName 设置配置文件名（不含扩展名）
func WithConfigName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Name = name
		}
	}
}

// WithFileType 设置配置文件类型（yaml|json|toml）
func WithFileType(t string) Option {
	return func(o *Options) {
		if t != "" {
			o.FileType = t
		}
	}
}

// WithConfigPaths 设置配置文件搜索路径
func WithConfigPaths(paths ...string) Option {
	return func(o *Options) {
		if len(paths) > 0 {
			o.Paths = paths
		}
	}
}

// WithEnvPrefix 设置环境变量前缀
// 如前缀 "AEGIS" 时，AEGIS_CACHE_TTL 覆盖配置键 cache.ttl
func WithEnvPrefix(prefix string) Option {
	return func(o *Options) {
		if prefix != "" {
			o.EnvPrefix = prefix
		}
	}
}
