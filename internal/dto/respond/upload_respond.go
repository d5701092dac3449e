package respond

// UploadRespond 文件上传响应
// 使用位置:
//   - internal/handler/message_handler.go: UploadFileHandler
type UploadRespond struct {
	Url      string `json:"url"`
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize"`
}
