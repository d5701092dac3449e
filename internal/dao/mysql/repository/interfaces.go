// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 每个写操作都是单条原子语句或一个事务，不存在先查后写的竞态窗口
package repository

import (
	"context"

	"chat_relay_server/internal/model"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	// UpsertByUsername 按用户名原子地创建或更新用户，并标记在线、绑定连接
	UpsertByUsername(ctx context.Context, username, sessionId string) (*model.User, error)
	// SetOnline 更新用户在线状态与绑定的连接 ID
	SetOnline(ctx context.Context, userId uint, online bool, sessionId string) (*model.User, error)
	// ResetPresence 把全部用户标记为离线并清空连接 ID，返回受影响行数
	ResetPresence(ctx context.Context) (int64, error)
	// FindById 根据 ID 查找用户
	FindById(ctx context.Context, userId uint) (*model.User, error)
	// ListAll 查找全部用户（名册），按 ID 升序
	ListAll(ctx context.Context) ([]model.User, error)
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// Create 持久化一条消息
	Create(ctx context.Context, message *model.Message) error
	// MarkRead 条件更新已读标志，返回更新后的消息以及本次是否发生了 false -> true 的转换
	MarkRead(ctx context.Context, messageId int64) (*model.Message, bool, error)
	// FindById 根据 ID 查找消息
	FindById(ctx context.Context, messageId int64) (*model.Message, error)
	// FindByUserId 查找用户作为发送者或接收者的全部消息，按创建时间升序
	FindByUserId(ctx context.Context, userId uint) ([]model.Message, error)
}

// UploadRepository 上传记录数据访问接口
type UploadRepository interface {
	// Create 写入上传记录
	Create(ctx context.Context, upload *model.Upload) error
}

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db      *gorm.DB
	User    UserRepository
	Message MessageRepository
	Upload  UploadRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:      db,
		User:    NewUserRepository(db),
		Message: NewMessageRepository(db),
		Upload:  NewUploadRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
