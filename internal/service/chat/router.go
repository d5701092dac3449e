// router.go
// 核心职责：消息路由
// 1. 校验发送者与消息内容，先持久化再投递
// 2. 向接收者的全部存活连接扇出 new_message
// 3. 处理已读回执，只在 false -> true 转换时通知发送者
package chat

import (
	"context"
	"strings"
	"time"

	"chat_relay_server/internal/dao/mysql/repository"
	"chat_relay_server/internal/infrastructure/blob"
	"chat_relay_server/internal/infrastructure/mq"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/constants"
	"chat_relay_server/pkg/errorx"
	"chat_relay_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

// HistoryInvalidator 消息写入或已读状态变化后使相关用户的历史缓存失效
type HistoryInvalidator interface {
	Invalidate(ctx context.Context, userIds ...uint)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, ...uint) {}

// Router 消息路由器
type Router struct {
	registry *Registry
	repos    *repository.Repositories
	blob     blob.Store
	journal  mq.Journal
	history  HistoryInvalidator
}

// NewRouter 创建消息路由器，journal / history 为 nil 时不做任何事
func NewRouter(registry *Registry, repos *repository.Repositories, store blob.Store, journal mq.Journal, history HistoryInvalidator) *Router {
	if journal == nil {
		journal = mq.NopJournal{}
	}
	if history == nil {
		history = nopInvalidator{}
	}
	return &Router{
		registry: registry,
		repos:    repos,
		blob:     store,
		journal:  journal,
		history:  history,
	}
}

// Send 发送文本消息，或 content 为已上传文件 URL 的文件消息
// 接收者离线时只持久化，不做重连补发
func (rt *Router) Send(ctx context.Context, connId string, recipientId uint, content, msgType string) (*model.Message, error) {
	sender, err := rt.registry.Require(connId)
	if err != nil {
		return nil, err
	}
	if msgType == "" {
		msgType = constants.MESSAGE_TYPE_TEXT
	}
	if msgType != constants.MESSAGE_TYPE_TEXT && msgType != constants.MESSAGE_TYPE_FILE {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "不支持的消息类型: %s", msgType)
	}
	if strings.TrimSpace(content) == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}
	if err := rt.checkRecipient(ctx, recipientId); err != nil {
		return nil, err
	}

	message := newMessage(sender.ID, recipientId, content, msgType)
	if err := rt.repos.Message.Create(ctx, message); err != nil {
		return nil, err
	}
	rt.afterPersist(ctx, connId, message)
	return message, nil
}

// SendFile 先上传文件，再在同一事务内写入上传记录和文件消息
// 上传失败时不产生任何消息记录
func (rt *Router) SendFile(ctx context.Context, connId string, recipientId uint, fileName string, data []byte) (*model.Message, error) {
	sender, err := rt.registry.Require(connId)
	if err != nil {
		return nil, err
	}
	if err := rt.checkRecipient(ctx, recipientId); err != nil {
		return nil, err
	}
	if rt.blob == nil {
		return nil, errorx.New(errorx.CodeUploadError, "文件存储未配置")
	}

	obj, err := rt.blob.Upload(ctx, fileName, data)
	if err != nil {
		zap.L().Error("upload file for message",
			zap.String("session_id", connId),
			zap.String("file_name", fileName),
			zap.Error(err))
		if errorx.Is(err, errorx.CodeUploadError) {
			return nil, err
		}
		return nil, errorx.Wrap(err, errorx.CodeUploadError, "文件上传失败")
	}

	message := newMessage(sender.ID, recipientId, obj.URL, constants.MESSAGE_TYPE_FILE)
	err = rt.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Upload.Create(ctx, &model.Upload{
			Url:      obj.URL,
			FileName: obj.FileName,
			FileType: obj.FileType,
			FileSize: obj.Size,
		}); err != nil {
			return err
		}
		return tx.Message.Create(ctx, message)
	})
	if err != nil {
		return nil, err
	}
	rt.afterPersist(ctx, connId, message)
	return message, nil
}

// MarkRead 标记消息已读
// 已读消息重复标记为空操作，不会再次通知发送者
func (rt *Router) MarkRead(ctx context.Context, connId string, messageId int64) error {
	reader, err := rt.registry.Require(connId)
	if err != nil {
		return err
	}
	if messageId <= 0 {
		return errorx.New(errorx.CodeInvalidParam, "消息 ID 不合法")
	}

	message, transitioned, err := rt.repos.Message.MarkRead(ctx, messageId)
	if err != nil {
		return err
	}
	if !transitioned {
		return nil
	}

	data, err := encodeMessageRead(message.ID)
	if err != nil {
		zap.L().Error("encode message_read", zap.Error(err))
		return nil
	}
	for _, sess := range rt.registry.SessionsOf(message.SenderId) {
		sess.Enqueue(data)
	}

	rt.history.Invalidate(ctx, message.SenderId, message.RecipientId)
	rt.journal.PublishRead(ctx, message.ID, reader.ID)
	return nil
}

func (rt *Router) checkRecipient(ctx context.Context, recipientId uint) error {
	if recipientId == 0 {
		return errorx.New(errorx.CodeInvalidParam, "接收者不能为空")
	}
	if _, err := rt.repos.User.FindById(ctx, recipientId); err != nil {
		if errorx.IsNotFound(err) {
			return errorx.Wrapf(err, errorx.CodeInvalidParam, "接收者 %d 不存在", recipientId)
		}
		return err
	}
	return nil
}

// afterPersist 投递给接收者，回显给发送连接，并写入缓存失效与消息日志
func (rt *Router) afterPersist(ctx context.Context, connId string, message *model.Message) {
	if data, err := Encode(EventNewMessage, message); err != nil {
		zap.L().Error("encode new_message", zap.Error(err))
	} else {
		for _, sess := range rt.registry.SessionsOf(message.RecipientId) {
			sess.Enqueue(data)
		}
	}

	if sess, ok := rt.registry.Session(connId); ok {
		if data, err := Encode(EventMessageSent, message); err == nil {
			sess.Enqueue(data)
		}
	}

	rt.history.Invalidate(ctx, message.SenderId, message.RecipientId)
	rt.journal.PublishMessage(ctx, message)

	zap.L().Debug("message routed",
		zap.Int64("message_id", message.ID),
		zap.Uint("sender_id", message.SenderId),
		zap.Uint("recipient_id", message.RecipientId),
		zap.String("type", message.Type))
}

func newMessage(senderId, recipientId uint, content, msgType string) *model.Message {
	return &model.Message{
		ID:          snowflake.GenerateID(),
		SenderId:    senderId,
		RecipientId: recipientId,
		Content:     content,
		Type:        msgType,
		Read:        false,
		CreatedAt:   time.Now(),
	}
}
