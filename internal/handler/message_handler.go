// Package handler 提供 HTTP 请求处理器
// 本文件处理消息历史、名册与文件上传
package handler

import (
	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/service"
	"chat_relay_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息处理器
type MessageHandler struct {
	svc service.MessageService
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(svc service.MessageService) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// GetMessageList 获取聊天记录
// GET /api/messages/:userId
// 返回该用户作为发送者或接收者的全部消息，按创建时间升序
func (h *MessageHandler) GetMessageList(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindUri(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.svc.GetMessageList(c.Request.Context(), req.UserId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ListUsers 获取名册
// GET /api/users
func (h *MessageHandler) ListUsers(c *gin.Context) {
	data, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UploadFile 上传文件
// POST /api/upload，multipart 字段名 file
func (h *MessageHandler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		HandleError(c, errorx.Wrap(err, errorx.CodeInvalidParam, "没有上传文件"))
		return
	}
	data, err := h.svc.UploadFile(c.Request.Context(), fileHeader)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
