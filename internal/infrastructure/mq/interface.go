// Package mq 消息日志（journal）
// 已持久化的聊天消息和已读回执在写库成功后以尽力而为的方式写入消息队列，供下游审计/离线分析消费
// 写入失败只记录日志，不影响在线投递
package mq

import (
	"context"
	"strconv"
	"time"

	"chat_relay_server/internal/model"
)

// 日志条目类型
const (
	KindMessage = "message"
	KindRead    = "message_read"
)

// Entry 写入消息队列的一条记录
type Entry struct {
	Kind      string         `json:"kind"`
	Message   *model.Message `json:"message,omitempty"`
	MessageId int64          `json:"messageId,string,omitempty"`
	ReaderId  uint           `json:"readerId,omitempty"`
	At        time.Time      `json:"at"`
}

// Key 分区键：同一会话双方的记录落在同一分区，保持相对顺序
func (e Entry) Key() []byte {
	if e.Message == nil {
		return []byte(strconv.FormatInt(e.MessageId, 10))
	}
	a, b := e.Message.SenderId, e.Message.RecipientId
	if a > b {
		a, b = b, a
	}
	return []byte(strconv.FormatUint(uint64(a), 10) + "_" + strconv.FormatUint(uint64(b), 10))
}

// Journal 消息日志接口
type Journal interface {
	// PublishMessage 记录一条已持久化的消息
	PublishMessage(ctx context.Context, msg *model.Message)
	// PublishRead 记录一次已读状态变更
	PublishRead(ctx context.Context, messageId int64, readerId uint)
	// Close 刷新并关闭底层连接
	Close() error
}

// NewMessageEntry 构造消息记录
func NewMessageEntry(msg *model.Message) Entry {
	return Entry{Kind: KindMessage, Message: msg, MessageId: msg.ID, At: time.Now()}
}

// NewReadEntry 构造已读回执记录
func NewReadEntry(messageId int64, readerId uint) Entry {
	return Entry{Kind: KindRead, MessageId: messageId, ReaderId: readerId, At: time.Now()}
}
