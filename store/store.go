// Package store 提供学习者画像的主存储组件，基于 GORM 实现。
//
// store 是存储韧性层的权威持久层（system of record）。组件借用
// 数据库连接器的连接，不管理连接生命周期；生产环境使用 MySQL
// 连接器，测试使用 SQLite 内存库，两者通过同一接口互换。
//
// ## 基本使用
//
//	mysqlConn, _ := connector.NewMySQL(cfg, connector.WithLogger(logger))
//	mysqlConn.Connect(ctx)
//	defer mysqlConn.Close()
//
//	st, _ := store.New(mysqlConn.GetClient(), store.WithLogger(logger))
//	rec, err := st.Fetch(ctx, "canvas-district-7", "lti-user-42")
package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/studyloop/aegis/clog"
	"github.com/studyloop/aegis/profile"
	"github.com/studyloop/aegis/xerrors"
)

// Store 主存储核心接口
type Store interface {
	// Fetch 按复合键读取画像记录
	//
	// 记录不存在时返回 ErrNotFound；其他错误表示传输/服务端故障。
	Fetch(ctx context.Context, tenantID, subject string) (*profile.LearnerProfile, error)

	// Save 全量写入画像记录（upsert）
	//
	// 以 (tenant_id, subject) 为冲突键，存在时整条替换属性列。
	Save(ctx context.Context, rec *profile.LearnerProfile) error

	// Ping 健康检查，穿透到底层数据库
	Ping(ctx context.Context) error
}

// 错误定义
var (
	// ErrNotFound 记录不存在（正常结果，不是故障）
	ErrNotFound = xerrors.New("store: record not found")

	// ErrClientNil 数据库客户端为空
	ErrClientNil = xerrors.New("store: gorm client is nil")
)

// gormStore Store 实现（非导出）
type gormStore struct {
	db     *gorm.DB
	logger clog.Logger
}

// New 创建主存储实例
//
// db 来自已连接的 MySQL/SQLite 连接器；组件不负责关闭连接。
func New(db *gorm.DB, opts ...Option) (Store, error) {
	if db == nil {
		return nil, ErrClientNil
	}

	opt := options{}
	for _, o := range opts {
		o(&opt)
	}
	if opt.logger == nil {
		opt.logger = clog.Discard()
	}

	return &gormStore{db: db, logger: opt.logger}, nil
}

// AutoMigrate 创建/更新画像表结构
//
// 部署时或测试启动时调用一次。
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return ErrClientNil
	}
	if err := db.AutoMigrate(&profile.LearnerProfile{}); err != nil {
		return xerrors.Wrap(err, "store: auto migrate")
	}
	return nil
}

func (s *gormStore) Fetch(ctx context.Context, tenantID, subject string) (*profile.LearnerProfile, error) {
	var rec profile.LearnerProfile
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND subject = ?", tenantID, subject).
		First(&rec).Error
	if err != nil {
		if xerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, xerrors.Wrapf(err, "store: fetch %s/%s", tenantID, subject)
	}
	return &rec, nil
}

func (s *gormStore) Save(ctx context.Context, rec *profile.LearnerProfile) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	// 全量替换语义：冲突时覆盖属性列与更新时间
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "subject"}},
			DoUpdates: clause.AssignmentColumns([]string{"attributes", "updated_at"}),
		}).
		Create(rec).Error
	if err != nil {
		return xerrors.Wrapf(err, "store: save %s/%s", rec.TenantID, rec.Subject)
	}
	return nil
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return xerrors.Wrap(err, "store: get sql db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return xerrors.Wrap(err, "store: ping")
	}
	return nil
}
