// server.go
// 核心职责：聊天服务聚合结构和依赖注入
// 把 Registry / Presence / Router / Typing 组合成网关调用的统一入口，
// 登录和断开在这里与名册广播串联
package chat

import (
	"context"

	"chat_relay_server/internal/dao/mysql/repository"
	"chat_relay_server/internal/infrastructure/blob"
	"chat_relay_server/internal/infrastructure/mq"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/constants"

	"go.uber.org/zap"
)

// ChatServer 聊天服务器聚合结构
type ChatServer struct {
	Registry *Registry
	Presence *Presence
	Router   *Router
	Typing   *Typing

	journal   mq.Journal
	queueSize int
}

// ChatServerConfig 聊天服务器依赖
type ChatServerConfig struct {
	Repos     *repository.Repositories
	Blob      blob.Store
	Journal   mq.Journal
	History   HistoryInvalidator
	QueueSize int // 每个连接的下行队列长度
}

// NewChatServer 创建聊天服务器实例
func NewChatServer(cfg ChatServerConfig) *ChatServer {
	if cfg.Journal == nil {
		cfg.Journal = mq.NopJournal{}
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = constants.CHANNEL_SIZE
	}
	registry := NewRegistry(cfg.Repos.User)
	return &ChatServer{
		Registry:  registry,
		Presence:  NewPresence(cfg.Repos.User, registry),
		Router:    NewRouter(registry, cfg.Repos, cfg.Blob, cfg.Journal, cfg.History),
		Typing:    NewTyping(registry),
		journal:   cfg.Journal,
		queueSize: cfg.QueueSize,
	}
}

// Connect 为新连接创建匿名会话并登记
func (cs *ChatServer) Connect(connId string) *Session {
	sess := NewSession(connId, cs.queueSize)
	cs.Registry.Register(sess)
	zap.L().Info("ws connection established", zap.String("session_id", connId))
	return sess
}

// Login 绑定用户并广播名册
// 连接已登录为其他用户时改绑：新用户 upsert 成功后才释放旧身份，旧身份的变化先广播
// 用户名非法或存储失败时连接保持原有绑定，不产生任何广播
func (cs *ChatServer) Login(ctx context.Context, connId, username string) (*model.User, error) {
	user, becameOnline, prev, prevOffline, err := cs.Registry.Switch(ctx, connId, username)
	if err != nil {
		return nil, err
	}
	if prev != nil {
		cs.Presence.Publish(ctx, connId, prev, prevOffline)
	}
	if sess, ok := cs.Registry.Session(connId); ok {
		if data, err := Encode(EventLoginOk, user); err == nil {
			sess.Enqueue(data)
		}
	}
	cs.Presence.Publish(ctx, connId, user, becameOnline)
	return user, nil
}

// Disconnect 连接断开（显式 disconnect 事件或底层连接关闭）
// 匿名连接断开不触发广播
func (cs *ChatServer) Disconnect(ctx context.Context, connId string) {
	user, becameOffline, bound, err := cs.Registry.Disconnect(ctx, connId)
	if err != nil {
		zap.L().Error("disconnect", zap.String("session_id", connId), zap.Error(err))
	}
	if !bound {
		zap.L().Info("ws connection closed", zap.String("session_id", connId))
		return
	}
	cs.Presence.Publish(ctx, connId, user, becameOffline)
}

// Send 见 Router.Send
func (cs *ChatServer) Send(ctx context.Context, connId string, recipientId uint, content, msgType string) (*model.Message, error) {
	return cs.Router.Send(ctx, connId, recipientId, content, msgType)
}

// SendFile 见 Router.SendFile
func (cs *ChatServer) SendFile(ctx context.Context, connId string, recipientId uint, fileName string, data []byte) (*model.Message, error) {
	return cs.Router.SendFile(ctx, connId, recipientId, fileName, data)
}

// MarkRead 见 Router.MarkRead
func (cs *ChatServer) MarkRead(ctx context.Context, connId string, messageId int64) error {
	return cs.Router.MarkRead(ctx, connId, messageId)
}

// NotifyTyping 见 Typing.NotifyTyping
func (cs *ChatServer) NotifyTyping(ctx context.Context, connId string, recipientId uint) error {
	return cs.Typing.NotifyTyping(ctx, connId, recipientId)
}

// ResetPresence 启动时在接受连接前调用，清除上次运行遗留的在线状态
func (cs *ChatServer) ResetPresence(ctx context.Context) error {
	return cs.Registry.ResetPresence(ctx)
}

// Roster 当前名册
func (cs *ChatServer) Roster(ctx context.Context) ([]model.User, error) {
	return cs.Presence.Roster(ctx)
}

// Close 关闭全部连接并刷新消息日志
func (cs *ChatServer) Close() {
	for _, sess := range cs.Registry.Sessions() {
		sess.Close()
	}
	if err := cs.journal.Close(); err != nil {
		zap.L().Error("close message journal", zap.Error(err))
	}
}
