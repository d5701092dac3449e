// Package service 定义业务层接口
// 本文件定义 Handler 层依赖的 Service 接口
package service

import (
	"context"
	"mime/multipart"

	"chat_relay_server/internal/dto/respond"
	"chat_relay_server/internal/model"
)

// MessageService 消息业务接口
// 处理消息历史记录、名册查询和文件上传
type MessageService interface {
	// GetMessageList 获取用户作为发送者或接收者的全部消息
	GetMessageList(ctx context.Context, userId uint) ([]model.Message, error)
	// Invalidate 使用户的历史缓存失效
	Invalidate(ctx context.Context, userIds ...uint)
	// ListUsers 获取名册
	ListUsers(ctx context.Context) ([]model.User, error)
	// UploadFile 上传文件并记录，返回可访问 URL
	UploadFile(ctx context.Context, fileHeader *multipart.FileHeader) (*respond.UploadRespond, error)
}
