package chat

import (
	"encoding/json"
	"strconv"

	"chat_relay_server/internal/dto/respond"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/constants"
)

// 下行事件名
const (
	EventUserList    = "user_list"
	EventUserStatus  = "user_status"
	EventNewMessage  = "new_message"
	EventUserTyping  = "user_typing"
	EventMessageRead = "message_read"
	EventLoginOk     = "login_ok"
	EventMessageSent = "message_sent"
	EventError       = "error"
)

// Envelope 下行事件外层结构 {"event": ..., "data": ...}
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Encode 序列化下行事件
func Encode(event string, data any) ([]byte, error) {
	return json.Marshal(Envelope{Event: event, Data: data})
}

func encodeUserList(users []model.User) ([]byte, error) {
	if users == nil {
		users = []model.User{}
	}
	return Encode(EventUserList, users)
}

func encodeUserStatus(userId uint, online bool) ([]byte, error) {
	return Encode(EventUserStatus, respond.UserStatusRespond{UserId: userId, Online: online})
}

func encodeUserTyping(userId uint) ([]byte, error) {
	return Encode(EventUserTyping, respond.UserTypingRespond{UserId: userId, ExpiresInMs: constants.TYPING_EXPIRE_MS})
}

// message_read 的 data 为字符串形式的消息 ID
func encodeMessageRead(messageId int64) ([]byte, error) {
	return Encode(EventMessageRead, strconv.FormatInt(messageId, 10))
}

// EncodeError 序列化拒绝事件
func EncodeError(code int, msg, event string) ([]byte, error) {
	return Encode(EventError, respond.ErrorEventRespond{Code: code, Msg: msg, Event: event})
}
