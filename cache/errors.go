package cache

import "github.com/studyloop/aegis/xerrors"

// 错误定义
var (
	// ErrCacheMiss 键不存在或已过期
	ErrCacheMiss = xerrors.New("cache: miss")

	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("cache: config is nil")

	// ErrConnectorNil Redis 驱动需要连接器但未注入
	ErrConnectorNil = xerrors.New("cache: redis connector is required, use WithRedisConnector")

	// ErrUnknownDriver 未知的缓存驱动
	ErrUnknownDriver = xerrors.New("cache: unknown driver")
)
