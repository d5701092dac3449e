package repository

import (
	"context"
	"time"

	"chat_relay_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户 Repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// UpsertByUsername 按用户名 upsert
// INSERT ... ON CONFLICT(username) DO UPDATE（MySQL 为 ON DUPLICATE KEY UPDATE），
// 并发同名登录由唯一索引仲裁，最终只会存在一条记录
func (r *userRepository) UpsertByUsername(ctx context.Context, username, sessionId string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidate := model.User{Username: username, Online: true, SessionId: sessionId}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "username"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"online":     true,
				"session_id": sessionId,
				"updated_at": time.Now(),
			}),
		}).Create(&candidate).Error; err != nil {
			return err
		}
		// 冲突更新时 candidate.ID 不可靠，按唯一键重新读取
		return tx.Where("username = ?", username).First(&user).Error
	})
	if err != nil {
		return nil, wrapDBErrorf(err, "upsert 用户 username=%s", username)
	}
	return &user, nil
}

// SetOnline 更新在线状态
func (r *userRepository) SetOnline(ctx context.Context, userId uint, online bool, sessionId string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.User{}).Where("id = ?", userId).Updates(map[string]interface{}{
			"online":     online,
			"session_id": sessionId,
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.First(&user, "id = ?", userId).Error
	})
	if err != nil {
		return nil, wrapDBErrorf(err, "更新用户在线状态 id=%d", userId)
	}
	return &user, nil
}

// ResetPresence 单条 UPDATE 清除全部在线状态
func (r *userRepository) ResetPresence(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("online = ? OR session_id <> ?", true, "").
		Updates(map[string]interface{}{
			"online":     false,
			"session_id": "",
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, wrapDBError(res.Error, "重置用户在线状态")
	}
	return res.RowsAffected, nil
}

// FindById 按 ID 查找用户
func (r *userRepository) FindById(ctx context.Context, userId uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userId).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户 id=%d", userId)
	}
	return &user, nil
}

// ListAll 查找全部用户
func (r *userRepository) ListAll(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, wrapDBError(err, "查询用户列表")
	}
	return users, nil
}
