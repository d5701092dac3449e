// Package service 提供业务逻辑层
// 本文件实现 Service 层的依赖注入和聚合
package service

import (
	"chat_relay_server/internal/dao/mysql/repository"
	myredis "chat_relay_server/internal/dao/redis"
	"chat_relay_server/internal/infrastructure/blob"
	"chat_relay_server/internal/infrastructure/mq"
	"chat_relay_server/internal/service/chat"
	"chat_relay_server/internal/service/message"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问各个 Service
type Services struct {
	Message MessageService   // 消息 Service
	Chat    *chat.ChatServer // 实时聊天
}

// Deps Service 层的外部依赖
type Deps struct {
	Repos     *repository.Repositories
	Cache     myredis.AsyncCacheService // 可为 nil，表示不启用历史缓存
	Blob      blob.Store
	Journal   mq.Journal
	QueueSize int
}

// NewServices 创建并注入所有 Service 实例
// 消息 Service 同时作为聊天服务的历史缓存失效器
func NewServices(deps Deps) *Services {
	messageSvc := message.NewMessageService(deps.Repos, deps.Cache, deps.Blob)
	chatServer := chat.NewChatServer(chat.ChatServerConfig{
		Repos:     deps.Repos,
		Blob:      deps.Blob,
		Journal:   deps.Journal,
		History:   messageSvc,
		QueueSize: deps.QueueSize,
	})
	return &Services{
		Message: messageSvc,
		Chat:    chatServer,
	}
}
