package connector

import (
	"context"
	"fmt"
	"sync/atomic"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/xerrors"
)

type mysqlConnector struct {
	cfg     *MySQLConfig
	db      *gorm.DB
	logger  clog.Logger
	healthy atomic.Bool
}

// NewMySQL 创建 MySQL 连接器
func NewMySQL(cfg *MySQLConfig, opts ...Option) (MySQLConnector, error) {
	if cfg == nil {
		return nil, xerrors.Wrap(ErrConfig, "mysql config is nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, xerrors.Wrapf(err, "invalid mysql config")
	}

	opt := &options{}
	for _, o := range opts {
		o(opt)
	}
	opt.applyDefaults()

	c := &mysqlConnector{
		cfg:    cfg,
		logger: opt.logger.With(clog.String("connector", "mysql"), clog.String("name", cfg.Name)),
	}

	// 构建 DSN：优先使用 cfg.DSN，否则从各字段拼接
	dsn := cfg.DSN
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=Local",
			cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.Charset)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, xerrors.Wrapf(ErrConnection, "mysql connector[%s]: %v", cfg.Name, err)
	}

	c.db = db
	return c, nil
}

// Connect 建立连接并配置连接池
func (c *mysqlConnector) Connect(ctx context.Context) error {
	c.logger.Info("attempting to connect to mysql",
		clog.String("host", c.cfg.Host),
		clog.Int("port", c.cfg.Port))

	sqlDB, err := c.db.DB()
	if err != nil {
		c.logger.Error("failed to get mysql db instance", clog.Error(err))
		return xerrors.Wrapf(err, "mysql connector[%s]: failed to get db instance", c.cfg.Name)
	}

	sqlDB.SetMaxIdleConns(c.cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.cfg.ConnMaxLifetime)

	if err := sqlDB.PingContext(ctx); err != nil {
		c.logger.Error("failed to connect to mysql", clog.Error(err))
		return xerrors.Wrapf(ErrConnection, "mysql connector[%s]: ping failed: %v", c.cfg.Name, err)
	}

	c.healthy.Store(true)
	c.logger.Info("successfully connected to mysql",
		clog.String("host", c.cfg.Host),
		clog.String("database", c.cfg.Database))

	return nil
}

// Close 关闭连接
func (c *mysqlConnector) Close() error {
	c.logger.Info("closing mysql connection")
	c.healthy.Store(false)

	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// HealthCheck 检查连接健康状态
func (c *mysqlConnector) HealthCheck(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		c.healthy.Store(false)
		return xerrors.Wrapf(ErrHealthCheck, "mysql connector[%s]: %v", c.cfg.Name, err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		c.healthy.Store(false)
		c.logger.Warn("mysql health check failed", clog.Error(err))
		return xerrors.Wrapf(ErrHealthCheck, "mysql connector[%s]: %v", c.cfg.Name, err)
	}

	c.healthy.Store(true)
	return nil
}

// IsHealthy 返回缓存的健康状态
func (c *mysqlConnector) IsHealthy() bool {
	return c.healthy.Load()
}

// Name 返回连接器名称
func (c *mysqlConnector) Name() string {
	return c.cfg.Name
}

// GetClient 返回 GORM 客户端
func (c *mysqlConnector) GetClient() *gorm.DB {
	return c.db
}
