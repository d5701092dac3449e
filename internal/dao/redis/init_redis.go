// Package redis 提供 Redis 缓存操作的封装
// 使用 github.com/go-redis/redis/v8 作为底层客户端
package redis

import (
	"context"
	"strconv"
	"time"

	"chat_relay_server/internal/config"

	"github.com/go-redis/redis/v8"
)

// Init 根据配置创建 Redis 客户端并返回缓存服务
// 启动时 PING 一次，连接失败直接返回错误
func Init(cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Password: cfg.Password,
		DB:       cfg.Db,
		// 连接池配置
		PoolSize:     50, // 最大连接数
		MinIdleConns: 15, // 最小空闲连接，与 Worker 数量匹配
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	// 15 个 Worker，缓冲区大小 3000
	return NewRedisCache(client, 15, 3000), nil
}
