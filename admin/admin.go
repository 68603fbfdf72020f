// Package admin 提供存储韧性层的运维 HTTP 接口，基于 Gin 实现。
//
// 暴露的端点：
//   - GET  /healthz                 存活探测
//   - GET  /storage/metrics         协调器指标快照
//   - GET  /storage/circuit         熔断器当前状态
//   - POST /storage/circuit/reset   强制熔断器回到 closed
//
// 这是内部运维面，不承载业务流量，部署时应只绑定内网地址。
package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/fallback"
	"github.com/studyloop/aegis/xerrors"
)

// Config 运维服务配置
type Config struct {
	// Addr 监听地址（默认：:9000）
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// ShutdownTimeout 优雅停机超时（默认：5s）
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// setDefaults 设置默认值（内部使用）
func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = ":9000"
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
}

// 错误定义
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("admin: config is nil")

	// ErrCoordinatorNil 协调器为空
	ErrCoordinatorNil = xerrors.New("admin: coordinator is nil")
)

// Server 运维 HTTP 服务
type Server struct {
	coord  fallback.Coordinator
	cfg    *Config
	logger clog.Logger
	engine *gin.Engine
	srv    *http.Server
}

// New 创建运维服务
func New(coord fallback.Coordinator, cfg *Config, opts ...Option) (*Server, error) {
	if coord == nil {
		return nil, ErrCoordinatorNil
	}
	if cfg == nil {
		return nil, ErrConfigNil
	}
	cfg.setDefaults()

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	logger := opt.logger
	if logger == nil {
		logger = clog.Discard()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID())

	s := &Server{
		coord:  coord,
		cfg:    cfg,
		logger: logger,
		engine: engine,
	}
	s.registerRoutes()
	return s, nil
}

// registerRoutes 注册路由（内部函数）
func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealthz)

	storage := s.engine.Group("/storage")
	{
		storage.GET("/metrics", s.handleMetrics)
		storage.GET("/circuit", s.handleCircuit)
		storage.POST("/circuit/reset", s.handleCircuitReset)
	}
}

// Handler 返回底层 HTTP handler，测试和外部装配使用
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start 启动服务并阻塞到 ctx 取消，随后优雅停机
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{Addr: s.cfg.Addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("admin server listening", clog.String("addr", s.cfg.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !xerrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return xerrors.Wrap(err, "admin: serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("admin server shutting down")
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return xerrors.Wrap(err, "admin: shutdown")
	}
	return nil
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"circuit_state": s.coord.Metrics().CircuitState,
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.coord.Metrics())
}

func (s *Server) handleCircuit(c *gin.Context) {
	snap := s.coord.Metrics()
	c.JSON(http.StatusOK, gin.H{
		"state":        snap.CircuitState,
		"last_failure": snap.LastFailure,
	})
}

func (s *Server) handleCircuitReset(c *gin.Context) {
	s.coord.ResetCircuit()
	s.logger.Info("circuit breaker reset via admin api",
		clog.String("request_id", c.GetString(RequestIDKey)),
		clog.String("remote_addr", c.ClientIP()))
	c.JSON(http.StatusOK, gin.H{
		"state": s.coord.Metrics().CircuitState,
	})
}
