// Package redis 历史消息缓存
// 服务层只依赖 CacheService 接口，Redis 不可用时业务以数据库结果为准
package redis

import (
	"context"
	"time"
)

// CacheService 历史缓存用到的键值操作
type CacheService interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	// Get 键不存在时返回空串和 nil
	Get(ctx context.Context, key string) (string, error)
	// GetOrError 键不存在时返回 CodeNotFound
	GetOrError(ctx context.Context, key string) (string, error)
	// Incr 原子自增，键不存在时从 0 开始
	Incr(ctx context.Context, key string) (int64, error)
	// DeleteByPattern 删除匹配 glob 模式的全部键
	DeleteByPattern(ctx context.Context, pattern string) error
}

// AsyncCacheService 额外提供后台任务提交，用于读路径上的缓存回填
type AsyncCacheService interface {
	CacheService
	SubmitTask(action func())
}
