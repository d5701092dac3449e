// Package message 消息历史、名册查询与文件上传
package message

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"strconv"
	"time"

	"chat_relay_server/internal/dao/mysql/repository"
	myredis "chat_relay_server/internal/dao/redis"
	"chat_relay_server/internal/dto/respond"
	"chat_relay_server/internal/infrastructure/blob"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/constants"
	"chat_relay_server/pkg/errorx"

	"go.uber.org/zap"
)

// messageService 消息业务逻辑实现
// 历史记录使用带版本号的 cache-aside：
// 缓存键为 message_list_<userId>_<ver>，写入或已读变化时自增 message_list_ver_<userId>，旧版本缓存自然失效
type messageService struct {
	repos *repository.Repositories
	cache myredis.AsyncCacheService
	blob  blob.Store
}

// NewMessageService 构造函数，cache 为 nil 时直接读库
func NewMessageService(repos *repository.Repositories, cache myredis.AsyncCacheService, store blob.Store) *messageService {
	return &messageService{repos: repos, cache: cache, blob: store}
}

// GetMessageList 获取用户作为发送者或接收者的全部消息，按创建时间升序
// 缓存不可用时退化为直接查库
func (m *messageService) GetMessageList(ctx context.Context, userId uint) ([]model.Message, error) {
	if userId == 0 {
		return nil, errorx.New(errorx.CodeInvalidParam, "用户 ID 不合法")
	}

	cacheKey := ""
	if m.cache != nil {
		cacheKey = m.listKey(ctx, userId)
	}
	if cacheKey != "" {
		rspString, err := m.cache.GetOrError(ctx, cacheKey)
		if err == nil {
			var rsp []model.Message
			if err := json.Unmarshal([]byte(rspString), &rsp); err != nil {
				// 即使缓存解析失败，也尝试查数据库
				zap.L().Error("json unmarshal cache error", zap.String("key", cacheKey), zap.Error(err))
			} else {
				return rsp, nil
			}
		} else if !errorx.IsNotFound(err) {
			zap.L().Error("redis get key error", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	// 缓存未命中或出错，查数据库
	messages, err := m.repos.Message.FindByUserId(ctx, userId)
	if err != nil {
		zap.L().Error("find messages by user id error", zap.Uint("user_id", userId), zap.Error(err))
		return nil, err
	}
	if messages == nil {
		messages = []model.Message{}
	}

	// 更新缓存
	if cacheKey != "" {
		snapshot := messages
		m.cache.SubmitTask(func() {
			jsonBytes, err := json.Marshal(snapshot)
			if err != nil {
				zap.L().Error("json marshal error", zap.Error(err))
				return
			}
			ttl := time.Duration(constants.REDIS_TIMEOUT) * time.Minute
			if err := m.cache.Set(context.Background(), cacheKey, string(jsonBytes), ttl); err != nil {
				zap.L().Error("redis set key error", zap.String("key", cacheKey), zap.Error(err))
			}
		})
	}
	return messages, nil
}

// listKey 当前版本的缓存键，读取版本号失败时返回空串表示跳过缓存
func (m *messageService) listKey(ctx context.Context, userId uint) string {
	uid := strconv.FormatUint(uint64(userId), 10)
	ver, err := m.cache.Get(ctx, constants.MESSAGE_VER_PREFIX+uid)
	if err != nil {
		zap.L().Warn("redis get history version error", zap.Uint("user_id", userId), zap.Error(err))
		return ""
	}
	if ver == "" {
		ver = "0"
	}
	return constants.MESSAGE_LIST_KEY + uid + "_" + ver
}

// Invalidate 使用户的历史缓存失效
// 自增版本号失败时退化为按前缀删除
func (m *messageService) Invalidate(ctx context.Context, userIds ...uint) {
	if m.cache == nil {
		return
	}
	seen := make(map[uint]struct{}, len(userIds))
	for _, userId := range userIds {
		if _, ok := seen[userId]; ok {
			continue
		}
		seen[userId] = struct{}{}

		uid := strconv.FormatUint(uint64(userId), 10)
		_, err := m.cache.Incr(ctx, constants.MESSAGE_VER_PREFIX+uid)
		if err == nil {
			continue
		}
		zap.L().Warn("redis incr history version error", zap.Uint("user_id", userId), zap.Error(err))
		if err := m.cache.DeleteByPattern(ctx, constants.MESSAGE_LIST_KEY+uid+"_*"); err != nil {
			zap.L().Error("redis delete history cache error", zap.Uint("user_id", userId), zap.Error(err))
		}
	}
}

// ListUsers 名册：全部用户及其在线状态，从不缓存
func (m *messageService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := m.repos.User.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// UploadFile 保存上传文件并写入上传记录
func (m *messageService) UploadFile(ctx context.Context, fileHeader *multipart.FileHeader) (*respond.UploadRespond, error) {
	if fileHeader == nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "没有上传文件")
	}
	if fileHeader.Size > constants.FILE_MAX_SIZE {
		return nil, errorx.Newf(errorx.CodeInvalidParam, "文件过大: %d bytes", fileHeader.Size)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUploadError, "读取上传文件失败")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, constants.FILE_MAX_SIZE+1))
	if err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUploadError, "读取上传文件失败")
	}

	obj, err := m.blob.Upload(ctx, fileHeader.Filename, data)
	if err != nil {
		return nil, err
	}

	upload := &model.Upload{
		Url:      obj.URL,
		FileName: obj.FileName,
		FileType: obj.FileType,
		FileSize: obj.Size,
	}
	if err := m.repos.Upload.Create(ctx, upload); err != nil {
		return nil, err
	}
	return &respond.UploadRespond{
		Url:      obj.URL,
		FileName: obj.FileName,
		FileType: obj.FileType,
		FileSize: obj.Size,
	}, nil
}
