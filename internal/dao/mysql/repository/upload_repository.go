package repository

import (
	"context"

	"chat_relay_server/internal/model"

	"gorm.io/gorm"
)

type uploadRepository struct {
	db *gorm.DB
}

// NewUploadRepository 创建上传记录 Repository
func NewUploadRepository(db *gorm.DB) UploadRepository {
	return &uploadRepository{db: db}
}

// Create 写入上传记录
func (r *uploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	if err := r.db.WithContext(ctx).Create(upload).Error; err != nil {
		return wrapDBErrorf(err, "创建上传记录 url=%s", upload.Url)
	}
	return nil
}
