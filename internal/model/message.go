// Package model 定义数据库实体模型
// 本文件定义消息模型，用于存储单聊消息
package model

import "time"

// Message 消息模型
// 对应数据库 messages 表
// 除 Read 外所有字段写入后不可变
type Message struct {
	// ID 消息唯一标识
	// 使用雪花算法生成，JSON 中以字符串下发，避免 JavaScript 精度丢失
	ID int64 `gorm:"primaryKey;autoIncrement:false;comment:消息雪花ID" json:"id,string"`

	// SenderId 发送者用户 ID
	SenderId uint `gorm:"column:sender_id;index;not null;comment:发送者id" json:"senderId"`

	// RecipientId 接收者用户 ID
	RecipientId uint `gorm:"column:recipient_id;index;not null;comment:接收者id" json:"recipientId"`

	// Content 文本内容，文件消息时为上传后的 URL
	Content string `gorm:"column:content;type:TEXT;not null;comment:消息内容" json:"content"`

	// Type 消息类型，"text" 或 "file"
	Type string `gorm:"column:type;type:varchar(10);not null;comment:消息类型" json:"type"`

	// Read 已读标志，只允许 false -> true
	Read bool `gorm:"column:is_read;not null;default:false;comment:是否已读" json:"read"`

	CreatedAt time.Time `gorm:"index" json:"timestamp"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}
