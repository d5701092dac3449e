package respond

// UserStatusRespond user_status 事件
type UserStatusRespond struct {
	UserId uint `json:"userId"`
	Online bool `json:"online"`
}

// UserTypingRespond user_typing 事件
// 接收端在 ExpiresInMs 内未收到新的 typing 即视为停止输入
type UserTypingRespond struct {
	UserId      uint `json:"userId"`
	ExpiresInMs int  `json:"expiresInMs"`
}

// ErrorEventRespond 上行事件被拒绝时下发的 error 事件
type ErrorEventRespond struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	Event string `json:"event"`
}
