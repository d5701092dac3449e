package repository

import (
	"errors"

	"chat_relay_server/pkg/errorx"

	"gorm.io/gorm"
)

// dbCode 记录不存在映射为 CodeNotFound，其余一律 CodeDBError
func dbCode(err error) int {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.CodeNotFound
	}
	return errorx.CodeDBError
}

func wrapDBError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errorx.Wrap(err, dbCode(err), msg)
}

func wrapDBErrorf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errorx.Wrapf(err, dbCode(err), format, args...)
}
