package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"chat_relay_server/internal/config"
	"chat_relay_server/pkg/errorx"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// unreachableClient 指向不可达地址，所有命令都会失败
func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRedisCache_ErrorsAreCacheErrors(t *testing.T) {
	rc := NewRedisCache(unreachableClient(), 1, 1)
	t.Cleanup(func() { _ = rc.Close() })
	ctx := context.Background()

	_, err := rc.Get(ctx, "message_list_ver_1")
	require.True(t, errorx.Is(err, errorx.CodeCacheError))

	_, err = rc.GetOrError(ctx, "message_list_1_0")
	require.True(t, errorx.Is(err, errorx.CodeCacheError))
	require.False(t, errorx.IsNotFound(err))

	_, err = rc.Incr(ctx, "message_list_ver_1")
	require.True(t, errorx.Is(err, errorx.CodeCacheError))

	err = rc.DeleteByPattern(ctx, "message_list_1_*")
	require.True(t, errorx.Is(err, errorx.CodeCacheError))
}

func TestRedisCache_SubmitTask(t *testing.T) {
	rc := NewRedisCache(unreachableClient(), 2, 4)
	t.Cleanup(func() { _ = rc.Close() })

	var wg sync.WaitGroup
	var mu sync.Mutex
	ran := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		rc.SubmitTask(func() {
			defer wg.Done()
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	wg.Wait()
	require.Equal(t, 10, ran)
}

func TestRedisCache_SubmitTaskRunsInlineWhenQueueFull(t *testing.T) {
	rc := NewRedisCache(unreachableClient(), 0, 0)
	t.Cleanup(func() { _ = rc.Close() })

	ran := false
	rc.SubmitTask(func() { ran = true })
	require.True(t, ran)
}

func TestInit_FailsWhenUnreachable(t *testing.T) {
	_, err := Init(config.RedisConfig{Host: "127.0.0.1", Port: 1})
	require.Error(t, err)
}
