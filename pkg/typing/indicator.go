// Package typing 供客户端使用的"正在输入"状态辅助
// 服务端只转发 user_typing，不发送停止信号，也不引用本包；
// 接收端（Go 客户端、测试）收到事件后调用 Observe，有效期内未再收到即视为停止
package typing

import (
	"sync"
	"time"

	"chat_relay_server/pkg/constants"
)

// DefaultTTL user_typing 的有效期
const DefaultTTL = constants.TYPING_EXPIRE_MS * time.Millisecond

// Indicator 记录每个用户最近一次 typing 的过期时间
// 只有新的 typing 事件能续期
type Indicator struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	expires map[uint]time.Time
}

// NewIndicator 创建指示器，ttl <= 0 时使用 DefaultTTL
func NewIndicator(ttl time.Duration) *Indicator {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Indicator{
		ttl:     ttl,
		now:     time.Now,
		expires: make(map[uint]time.Time),
	}
}

// WithClock 替换时间源，用于测试
func (i *Indicator) WithClock(now func() time.Time) *Indicator {
	i.now = now
	return i
}

// Observe 收到 user_typing 时调用
// expiresInMs 为事件携带的有效期，<= 0 时使用指示器默认值
func (i *Indicator) Observe(userId uint, expiresInMs int) {
	ttl := i.ttl
	if expiresInMs > 0 {
		ttl = time.Duration(expiresInMs) * time.Millisecond
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.expires[userId] = i.now().Add(ttl)
}

// Active 用户当前是否显示为正在输入
func (i *Indicator) Active(userId uint) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	exp, ok := i.expires[userId]
	if !ok {
		return false
	}
	if !i.now().Before(exp) {
		delete(i.expires, userId)
		return false
	}
	return true
}

// ActiveUsers 当前正在输入的用户，顺带清理已过期的记录
func (i *Indicator) ActiveUsers() []uint {
	i.mu.Lock()
	defer i.mu.Unlock()
	now := i.now()
	out := make([]uint, 0, len(i.expires))
	for userId, exp := range i.expires {
		if now.Before(exp) {
			out = append(out, userId)
		} else {
			delete(i.expires, userId)
		}
	}
	return out
}
