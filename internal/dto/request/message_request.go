package request

// GetMessageListRequest 获取聊天记录请求
// 使用位置:
//   - internal/handler/message_handler.go: GetMessageListHandler
type GetMessageListRequest struct {
	UserId uint `uri:"userId" binding:"required"`
}
