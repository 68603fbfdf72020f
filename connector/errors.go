package connector

import "github.com/studyloop/aegis/xerrors"

// Sentinel Errors - 连接器专用的哨兵错误
var (
	ErrNotConnected = xerrors.New("connector: not connected")
	ErrConnection   = xerrors.New("connector: connection failed")
	ErrConfig       = xerrors.New("connector: invalid config")
	ErrClientNil    = xerrors.New("connector: client is nil")
	ErrHealthCheck  = xerrors.New("connector: health check failed")
)
