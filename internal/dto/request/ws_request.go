package request

import "encoding/json"

// Envelope WebSocket 上行事件外层结构
// 使用位置:
//   - internal/gateway/websocket/client.go: Read
type Envelope struct {
	Event string          `json:"event" binding:"required"`
	Data  json.RawMessage `json:"data"`
}

// LoginRequest login 事件
// data 可以是裸字符串 "alice"，也可以是 {"username": "alice"}
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=64"`
}

func (r *LoginRequest) UnmarshalJSON(b []byte) error {
	if isObject(b) {
		type alias LoginRequest
		return json.Unmarshal(b, (*alias)(r))
	}
	return json.Unmarshal(b, &r.Username)
}

// SendMessageRequest send_message 事件
// 携带 FileData（base64）时先上传再发送文件消息；
// type 为 file 且只有 content 时，content 视为已通过 /api/upload 上传的 URL
type SendMessageRequest struct {
	RecipientId ID     `json:"recipientId" binding:"required"`
	Content     string `json:"content"`
	Type        string `json:"type" binding:"omitempty,oneof=text file"`
	FileName    string `json:"fileName" binding:"max=255"`
	FileData    []byte `json:"fileData"`
}

// TypingRequest typing 事件，data 为接收者 ID 或 {"recipientId": ...}
type TypingRequest struct {
	RecipientId ID `json:"recipientId" binding:"required"`
}

func (r *TypingRequest) UnmarshalJSON(b []byte) error {
	if isObject(b) {
		type alias TypingRequest
		return json.Unmarshal(b, (*alias)(r))
	}
	return r.RecipientId.UnmarshalJSON(b)
}

// MarkReadRequest mark_read 事件，data 为消息 ID 或 {"messageId": ...}
type MarkReadRequest struct {
	MessageId ID `json:"messageId" binding:"required"`
}

func (r *MarkReadRequest) UnmarshalJSON(b []byte) error {
	if isObject(b) {
		type alias MarkReadRequest
		return json.Unmarshal(b, (*alias)(r))
	}
	return r.MessageId.UnmarshalJSON(b)
}
