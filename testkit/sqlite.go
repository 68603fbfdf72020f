package testkit

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/studyloop/aegis/connector"
)

// NewSQLiteConfig 返回 SQLite 内存数据库配置
//
// 每次调用生成独立命名的共享内存库，连接池内的连接看到同一份
// 数据，不同测试之间互不可见。
func NewSQLiteConfig() *connector.SQLiteConfig {
	return &connector.SQLiteConfig{
		Path: fmt.Sprintf("file:%s?mode=memory&cache=shared", NewID()),
	}
}

// NewSQLiteConnector 获取 SQLite 连接器（内存数据库）
// 生命周期由 t.Cleanup 管理
func NewSQLiteConnector(t *testing.T) connector.SQLiteConnector {
	cfg := NewSQLiteConfig()
	conn, err := connector.NewSQLite(cfg, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create sqlite connector")

	err = conn.Connect(context.Background())
	require.NoError(t, err, "failed to connect to sqlite")

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

// NewSQLiteDB 获取 GORM DB 实例（内存数据库）
func NewSQLiteDB(t *testing.T) *gorm.DB {
	return NewSQLiteConnector(t).GetClient()
}

// NewPersistentSQLiteConnector 获取持久化 SQLite 连接器
// 数据库文件存储在 t.TempDir() 中，测试结束后自动清理
func NewPersistentSQLiteConnector(t *testing.T) connector.SQLiteConnector {
	conn, err := connector.NewSQLite(&connector.SQLiteConfig{
		Path: t.TempDir() + "/test.db",
	}, connector.WithLogger(NewLogger()))
	require.NoError(t, err, "failed to create sqlite connector")

	err = conn.Connect(context.Background())
	require.NoError(t, err, "failed to connect to sqlite")

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}
