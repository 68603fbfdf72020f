package connector

import (
	"context"
	"testing"
	"time"
)

// TestRedisConfigDefaults 测试 Redis 配置默认值
func TestRedisConfigDefaults(t *testing.T) {
	cfg := &RedisConfig{Addr: "127.0.0.1:6379"}
	if err := cfg.validate(); err != nil {
		t.Fatalf("validate 返回错误: %v", err)
	}

	if cfg.Name != "default" {
		t.Errorf("Name = %q，期望 default", cfg.Name)
	}
	if cfg.PoolSize != 10 {
		t.Errorf("PoolSize = %d，期望 10", cfg.PoolSize)
	}
	if cfg.DialTimeout != 5*time.Second {
		t.Errorf("DialTimeout = %v，期望 5s", cfg.DialTimeout)
	}
}

// TestRedisConfigInvalid 测试非法 Redis 配置
func TestRedisConfigInvalid(t *testing.T) {
	if err := (&RedisConfig{}).validate(); err == nil {
		t.Error("缺少 Addr 应返回错误")
	}
	if err := (&RedisConfig{Addr: "x", DB: -1}).validate(); err == nil {
		t.Error("负数 DB 应返回错误")
	}
	if _, err := NewRedis(nil); err == nil {
		t.Error("nil 配置应返回错误")
	}
}

// TestMySQLConfigValidate 测试 MySQL 配置校验
func TestMySQLConfigValidate(t *testing.T) {
	// DSN 提供时跳过字段校验
	cfg := &MySQLConfig{DSN: "user:pass@tcp(localhost:3306)/aegis"}
	if err := cfg.validate(); err != nil {
		t.Errorf("带 DSN 的配置不应报错: %v", err)
	}

	// 缺少必填字段
	if err := (&MySQLConfig{Host: "localhost"}).validate(); err == nil {
		t.Error("缺少 username/database 应返回错误")
	}
}

// TestSQLiteConnector 测试 SQLite 连接器生命周期（内存数据库）
func TestSQLiteConnector(t *testing.T) {
	conn, err := NewSQLite(&SQLiteConfig{Path: "file::memory:?cache=shared"})
	if err != nil {
		t.Fatalf("NewSQLite 返回错误: %v", err)
	}

	ctx := context.Background()

	// 未连接时 GetClient 应返回 nil
	if conn.GetClient() != nil {
		t.Error("Connect 之前 GetClient 应返回 nil")
	}
	if conn.IsHealthy() {
		t.Error("Connect 之前 IsHealthy 应为 false")
	}

	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("Connect 返回错误: %v", err)
	}
	// 幂等
	if err := conn.Connect(ctx); err != nil {
		t.Fatalf("重复 Connect 返回错误: %v", err)
	}

	if conn.GetClient() == nil {
		t.Fatal("Connect 之后 GetClient 不应返回 nil")
	}
	if err := conn.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck 返回错误: %v", err)
	}
	if !conn.IsHealthy() {
		t.Error("HealthCheck 之后 IsHealthy 应为 true")
	}

	if err := conn.Close(); err != nil {
		t.Errorf("Close 返回错误: %v", err)
	}
	// 幂等
	if err := conn.Close(); err != nil {
		t.Errorf("重复 Close 返回错误: %v", err)
	}
	if conn.GetClient() != nil {
		t.Error("Close 之后 GetClient 应返回 nil")
	}
}

// TestSQLiteConfigInvalid 测试非法 SQLite 配置
func TestSQLiteConfigInvalid(t *testing.T) {
	if _, err := NewSQLite(&SQLiteConfig{}); err == nil {
		t.Error("缺少 Path 应返回错误")
	}
	if _, err := NewSQLite(nil); err == nil {
		t.Error("nil 配置应返回错误")
	}
}
