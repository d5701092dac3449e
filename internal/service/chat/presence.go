// presence.go
// 核心职责：在线状态广播
// 1. 每次绑定连接登录/断开后，从存储重新计算完整名册并推送 user_list
// 2. 用户真正发生上下线转换时推送 user_status
package chat

import (
	"context"
	"sync"

	"chat_relay_server/internal/dao/mysql/repository"
	"chat_relay_server/internal/model"

	"go.uber.org/zap"
)

// Presence 在线状态广播器
// 广播串行执行：读取名册与入队都在 mu 内完成，
// 接收方不会在收到较新名册之后再收到较旧的名册
type Presence struct {
	mu       sync.Mutex
	users    repository.UserRepository
	registry *Registry
}

// NewPresence 创建广播器
func NewPresence(users repository.UserRepository, registry *Registry) *Presence {
	return &Presence{users: users, registry: registry}
}

// Publish 发布一次成员变化
// trigger 为触发本次变化的连接 ID，它不会收到 user_status
func (p *Presence) Publish(ctx context.Context, trigger string, user *model.User, transitioned bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if transitioned && user != nil {
		p.broadcastStatusLocked(trigger, user.ID, user.Online)
	}
	p.broadcastRosterLocked(ctx)
}

// Roster 当前名册，每次都从存储读取
func (p *Presence) Roster(ctx context.Context) ([]model.User, error) {
	return p.users.ListAll(ctx)
}

func (p *Presence) broadcastStatusLocked(trigger string, userId uint, online bool) {
	data, err := encodeUserStatus(userId, online)
	if err != nil {
		zap.L().Error("encode user_status", zap.Error(err))
		return
	}
	for _, sess := range p.registry.Sessions() {
		if sess.ID == trigger {
			continue
		}
		sess.Enqueue(data)
	}
}

func (p *Presence) broadcastRosterLocked(ctx context.Context) {
	users, err := p.users.ListAll(ctx)
	if err != nil {
		zap.L().Error("load roster for broadcast", zap.Error(err))
		return
	}
	data, err := encodeUserList(users)
	if err != nil {
		zap.L().Error("encode user_list", zap.Error(err))
		return
	}
	sessions := p.registry.Sessions()
	for _, sess := range sessions {
		sess.Enqueue(data)
	}
	zap.L().Debug("roster broadcast",
		zap.Int("users", len(users)),
		zap.Int("online", p.registry.OnlineCount()),
		zap.Int("sessions", len(sessions)))
}
