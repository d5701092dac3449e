// Package blob 文件存储
// 上层只依赖 Store 接口：传入文件名和内容，返回可公开访问的 URL
package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"chat_relay_server/pkg/constants"
	"chat_relay_server/pkg/errorx"
	"chat_relay_server/pkg/util/random"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
)

// Object 上传完成后的文件信息
type Object struct {
	URL      string
	FileName string // 原始文件名
	FileType string // 按文件内容嗅探出的 MIME 类型
	Size     int64
}

// Store 文件存储接口
type Store interface {
	Upload(ctx context.Context, name string, data []byte) (*Object, error)
}

// LocalStore 本地磁盘实现，文件由 gin 以 /static/files 静态路由对外提供
type LocalStore struct {
	dir     string
	baseURL string
}

// NewLocalStore 创建本地存储，目录不存在时自动创建
func NewLocalStore(dir, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Upload 保存文件，所有失败都返回 CodeUploadError
func (s *LocalStore) Upload(ctx context.Context, name string, data []byte) (*Object, error) {
	if len(data) == 0 {
		return nil, errorx.New(errorx.CodeUploadError, "empty file")
	}
	if len(data) > constants.FILE_MAX_SIZE {
		return nil, errorx.Newf(errorx.CodeUploadError, "file too large: %d bytes", len(data))
	}
	if err := ctx.Err(); err != nil {
		return nil, errorx.Wrap(err, errorx.CodeUploadError, "upload canceled")
	}

	// 以 Magic Bytes 判断真实类型，扩展名缺失时使用嗅探结果
	mtype := mimetype.Detect(data)
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = mtype.Extension()
	}
	storedName := random.GetNowAndLenRandomString(10) + ext

	dst := filepath.Join(s.dir, storedName)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeUploadError, "write file %s", dst)
	}

	zap.L().Info("upload file success",
		zap.String("file_name", name),
		zap.String("stored_as", storedName),
		zap.String("mime", mtype.String()),
		zap.Int("size", len(data)))

	return &Object{
		URL:      s.baseURL + "/static/files/" + storedName,
		FileName: filepath.Base(name),
		FileType: mtype.String(),
		Size:     int64(len(data)),
	}, nil
}

var _ Store = (*LocalStore)(nil)
