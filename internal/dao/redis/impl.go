package redis

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"chat_relay_server/pkg/errorx"
)

// scanBatch 每次 SCAN 的建议条数
const scanBatch = 500

// RedisCache AsyncCacheService 的 Redis 实现
// 回填任务由固定数量的 worker 消费，队列满时在调用方协程内同步执行
type RedisCache struct {
	client *redis.Client
	tasks  chan func()
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRedisCache 创建缓存并启动 workers 个后台 worker
func NewRedisCache(client *redis.Client, workers, queueSize int) *RedisCache {
	rc := &RedisCache{
		client: client,
		tasks:  make(chan func(), queueSize),
	}
	rc.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go rc.worker(i)
	}
	zap.L().Info("redis cache workers started", zap.Int("workers", workers), zap.Int("queue", queueSize))
	return rc
}

func (r *RedisCache) worker(id int) {
	defer r.wg.Done()
	for task := range r.tasks {
		r.run(id, task)
	}
}

// run 单个任务 panic 不影响 worker 继续消费
func (r *RedisCache) run(id int, task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			zap.L().Error("redis cache task panic", zap.Int("worker", id), zap.Any("recover", rec))
		}
	}()
	task()
}

func cacheErr(err error, op, key string) error {
	return errorx.Wrapf(err, errorx.CodeCacheError, "redis %s %s", op, key)
}

func (r *RedisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return cacheErr(err, "set", key)
	}
	return nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", nil
	case err != nil:
		return "", cacheErr(err, "get", key)
	}
	return value, nil
}

func (r *RedisCache) GetOrError(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", errorx.Wrapf(err, errorx.CodeNotFound, "redis key %s not found", key)
	case err != nil:
		return "", cacheErr(err, "get", key)
	}
	return value, nil
}

func (r *RedisCache) Incr(ctx context.Context, key string) (int64, error) {
	value, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, cacheErr(err, "incr", key)
	}
	return value, nil
}

// DeleteByPattern 用 SCAN 分批收集键后 UNLINK，避免 KEYS 阻塞
func (r *RedisCache) DeleteByPattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := r.client.Unlink(ctx, batch...).Err(); err != nil {
				return cacheErr(err, "unlink", pattern)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return cacheErr(err, "scan", pattern)
	}
	if len(batch) > 0 {
		if err := r.client.Unlink(ctx, batch...).Err(); err != nil {
			return cacheErr(err, "unlink", pattern)
		}
	}
	return nil
}

// SubmitTask 提交回填任务，队列满时同步执行
func (r *RedisCache) SubmitTask(action func()) {
	select {
	case r.tasks <- action:
	default:
		zap.L().Warn("redis cache queue full, running task inline")
		r.run(-1, action)
	}
}

// Close 等待已提交的任务执行完后关闭客户端
func (r *RedisCache) Close() error {
	r.once.Do(func() { close(r.tasks) })
	r.wg.Wait()
	return r.client.Close()
}

var _ AsyncCacheService = (*RedisCache)(nil)
