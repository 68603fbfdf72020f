package testkit

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studyloop/aegis/connector"
)

// GetRedisConfig 返回 Redis 测试配置
//
// 地址取自 AEGIS_TEST_REDIS_ADDR 环境变量，未设置时为空；
// 调用方应先通过 GetRedisConnector 判定跳过。
func GetRedisConfig() *connector.RedisConfig {
	return &connector.RedisConfig{
		Name:         "test-redis",
		Addr:         os.Getenv("AEGIS_TEST_REDIS_ADDR"),
		DB:           1, // 使用 DB 1 避免与默认的 DB 0 冲突
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// GetRedisConnector 获取 Redis 连接器
// AEGIS_TEST_REDIS_ADDR 未设置时跳过当前测试
func GetRedisConnector(t *testing.T) connector.RedisConnector {
	cfg := GetRedisConfig()
	if cfg.Addr == "" {
		t.Skip("AEGIS_TEST_REDIS_ADDR 未设置，跳过 Redis 集成测试")
	}

	conn, err := connector.NewRedis(cfg, connector.WithLogger(NewLogger()))
	if err != nil {
		t.Fatalf("failed to create redis connector: %v", err)
	}

	if err := conn.Connect(context.Background()); err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn
}

// GetRedisClient 获取原生 Redis 客户端
func GetRedisClient(t *testing.T) *redis.Client {
	return GetRedisConnector(t).GetClient()
}
