package constants

const (
	CHANNEL_SIZE       = 100      // 默认通道大小
	FILE_MAX_SIZE      = 32 << 20 // multipart 表单内存上限
	REDIS_TIMEOUT      = 1        // redis 历史消息缓存过期时间 (分钟)
	TYPING_EXPIRE_MS   = 3000     // 接收端输入状态有效期 (毫秒)
	MESSAGE_TYPE_TEXT  = "text"   // 文本消息
	MESSAGE_TYPE_FILE  = "file"   // 文件消息，content 为上传后的 URL
	MESSAGE_LIST_KEY   = "message_list_"
	MESSAGE_VER_PREFIX = "message_list_ver_"
)
