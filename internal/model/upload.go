package model

import "time"

// Upload 上传记录，每次成功上传写入一条
type Upload struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Url        string    `gorm:"column:url;type:varchar(255);not null;comment:文件url" json:"url"`
	FileName   string    `gorm:"column:file_name;type:varchar(255);comment:原始文件名" json:"fileName"`
	FileType   string    `gorm:"column:file_type;type:varchar(100);comment:MIME类型" json:"fileType"`
	FileSize   int64     `gorm:"column:file_size;comment:文件大小(字节)" json:"fileSize"`
	UploadedAt time.Time `gorm:"column:uploaded_at;autoCreateTime" json:"uploadedAt"`
}

// TableName 指定表名
func (Upload) TableName() string {
	return "uploads"
}
