// typing.go
// 核心职责：转发输入状态
// 不持久化、不去重、不限流，也没有"停止输入"信号；过期由接收端负责
package chat

import (
	"context"

	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/errorx"

	"go.uber.org/zap"
)

// Typing 输入状态中继
type Typing struct {
	registry *Registry
}

// NewTyping 创建输入状态中继
func NewTyping(registry *Registry) *Typing {
	return &Typing{registry: registry}
}

// NotifyTyping 向接收者的全部存活连接转发 user_typing
// 接收者不在线时直接丢弃
func (t *Typing) NotifyTyping(ctx context.Context, connId string, recipientId uint) error {
	sender, err := t.registry.Require(connId)
	if err != nil {
		return err
	}
	if recipientId == 0 {
		return errorx.New(errorx.CodeInvalidParam, "接收者不能为空")
	}
	return t.forward(sender, recipientId)
}

func (t *Typing) forward(sender model.User, recipientId uint) error {
	sessions := t.registry.SessionsOf(recipientId)
	if len(sessions) == 0 {
		return nil
	}
	data, err := encodeUserTyping(sender.ID)
	if err != nil {
		zap.L().Error("encode user_typing", zap.Error(err))
		return errorx.ErrServerBusy
	}
	for _, sess := range sessions {
		sess.Enqueue(data)
	}
	return nil
}
