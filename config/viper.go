package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/studyloop/aegis/xerrors"
)

// loader 实现 Loader 接口
type loader struct {
	v         *viper.Viper
	opts      *Options
	mu        sync.RWMutex
	watches   map[string][]chan Event
	oldValues map[string]any
}

// newLoader 创建一个新的配置加载器（内部使用）
func newLoader(opts ...Option) (Loader, error) {
	options := defaultOptions()
	for _, o := range opts {
		o(options)
	}

	return &loader{
		v:         viper.New(),
		opts:      options,
		watches:   make(map[string][]chan Event),
		oldValues: make(map[string]any),
	}, nil
}

// Load 初始化并从所有来源加载配置
func (l *loader) Load(ctx context.Context) error {
	l.v.SetConfigName(l.opts.Name)
	l.v.SetConfigType(l.opts.FileType)

	for _, path := range l.opts.Paths {
		l.v.AddConfigPath(path)
	}

	// 环境变量（最高优先级）
	l.v.SetEnvPrefix(l.opts.EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()

	// .env 文件（高优先级）
	l.loadDotEnv()

	// 基础配置文件（最低优先级），不存在时不算错误
	if err := l.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return xerrors.Wrapf(err, "failed to read config file %s", l.opts.Name)
		}
	}

	// 环境特定配置（中等优先级），如 config.production.yaml
	if err := l.loadEnvironmentConfig(); err != nil {
		return err
	}

	// 保存当前值作为变更基线
	l.captureCurrentValues()

	// 启动文件监听
	l.v.OnConfigChange(func(e fsnotify.Event) {
		l.loadDotEnv()
		l.notifyWatches()
	})
	l.v.WatchConfig()

	return nil
}

// loadDotEnv 尝试从搜索路径加载 .env 文件（内部使用，失败静默）
func (l *loader) loadDotEnv() {
	_ = godotenv.Load()
	for _, path := range l.opts.Paths {
		_ = godotenv.Load(filepath.Join(path, ".env"))
	}
}

// loadEnvironmentConfig 合并环境特定配置文件（内部使用）
// 环境名取自 {EnvPrefix}_ENV，如 AEGIS_ENV=production
func (l *loader) loadEnvironmentConfig() error {
	env := os.Getenv(fmt.Sprintf("%s_ENV", l.opts.EnvPrefix))
	if env == "" {
		return nil
	}

	l.v.SetConfigName(fmt.Sprintf("%s.%s", l.opts.Name, env))
	defer l.v.SetConfigName(l.opts.Name)

	if err := l.v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return xerrors.Wrapf(err, "failed to merge %s config", env)
		}
	}
	return nil
}

// Get 获取原始配置值
func (l *loader) Get(key string) any {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.v.Get(key)
}

// Unmarshal 将整个配置反序列化到结构体
func (l *loader) Unmarshal(v any) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.v.Unmarshal(v)
}

// UnmarshalKey 将指定 Key 的配置反序列化到结构体
func (l *loader) UnmarshalKey(key string, v any) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.v.UnmarshalKey(key, v)
}

// Watch 监听配置变化
func (l *loader) Watch(ctx context.Context, key string) (<-chan Event, error) {
	ch := make(chan Event, 8)

	l.mu.Lock()
	l.watches[key] = append(l.watches[key], ch)
	l.mu.Unlock()

	// context 取消时移除监听
	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		chans := l.watches[key]
		for i, c := range chans {
			if c == ch {
				l.watches[key] = append(chans[:i], chans[i+1:]...)
				close(ch)
				break
			}
		}
	}()

	return ch, nil
}

// captureCurrentValues 保存所有被监听 key 的当前值（内部使用）
func (l *loader) captureCurrentValues() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, key := range l.v.AllKeys() {
		l.oldValues[key] = l.v.Get(key)
	}
}

// notifyWatches 配置变化时向监听者分发事件（内部使用）
func (l *loader) notifyWatches() {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	for key, chans := range l.watches {
		newVal := l.v.Get(key)
		oldVal := l.oldValues[key]
		if fmt.Sprintf("%v", newVal) == fmt.Sprintf("%v", oldVal) {
			continue
		}
		l.oldValues[key] = newVal

		event := Event{
			Key:       key,
			Value:     newVal,
			OldValue:  oldVal,
			Source:    "file",
			Timestamp: now,
		}
		for _, ch := range chans {
			select {
			case ch <- event:
			default:
				// 监听者处理不过来时丢弃事件，避免阻塞热更新回调
			}
		}
	}

	// 刷新其余 key 的基线
	for _, key := range l.v.AllKeys() {
		l.oldValues[key] = l.v.Get(key)
	}
}
