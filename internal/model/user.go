// Package model 定义数据库实体模型
// 本文件定义用户模型，用户按用户名唯一，首次登录时创建
package model

import "time"

// User 用户模型
// 对应数据库 users 表
type User struct {
	// ID 自增主键，同时作为消息收发双方的寻址标识
	ID uint `gorm:"primaryKey" json:"id"`

	// Username 用户名
	// 唯一索引是登录 upsert 的冲突目标，保证同名只有一条记录
	Username string `gorm:"column:username;uniqueIndex;type:varchar(64);not null;comment:用户名" json:"username"`

	// Online 在线标志，当且仅当存在绑定到该用户的存活连接时为 true
	Online bool `gorm:"column:online;not null;default:false;comment:是否在线" json:"online"`

	// SessionId 最近绑定的连接 ID，离线时为空
	// 只在服务端使用，不下发给其他客户端
	SessionId string `gorm:"column:session_id;type:char(36);comment:绑定的连接id" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
