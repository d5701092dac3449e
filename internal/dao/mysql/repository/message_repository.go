package repository

import (
	"context"

	"chat_relay_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create 创建消息
func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBErrorf(err, "创建消息 id=%d", message.ID)
	}
	return nil
}

// MarkRead 只在 is_read = false 时更新，RowsAffected 即是否发生转换
// 已读消息重复标记不会产生任何写入
func (r *messageRepository) MarkRead(ctx context.Context, messageId int64) (*model.Message, bool, error) {
	var (
		message      model.Message
		transitioned bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Message{}).
			Where("id = ? AND is_read = ?", messageId, false).
			Update("is_read", true)
		if res.Error != nil {
			return res.Error
		}
		transitioned = res.RowsAffected == 1
		return tx.First(&message, "id = ?", messageId).Error
	})
	if err != nil {
		return nil, false, wrapDBErrorf(err, "标记消息已读 id=%d", messageId)
	}
	return &message, transitioned, nil
}

// FindById 按 ID 查找消息
func (r *messageRepository) FindById(ctx context.Context, messageId int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).First(&message, "id = ?", messageId).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 id=%d", messageId)
	}
	return &message, nil
}

// FindByUserId 按发送者或接收者查找消息（双向）
func (r *messageRepository) FindByUserId(ctx context.Context, userId uint) ([]model.Message, error) {
	var messages []model.Message
	if err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userId, userId).
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 user=%d", userId)
	}
	return messages, nil
}
