// Package errorx 带业务码的错误类型
// 仓储、缓存、上传各层都返回 *CodeError，网关和 HTTP 层据此决定下发给客户端的 code 与 msg
package errorx

import (
	"errors"
	"fmt"
)

// 业务状态码
const (
	CodeSuccess      = 1000
	CodeInvalidParam = 1001 // 参数不合法：空文本、未知类型、接收者不存在
	CodeServerBusy   = 1005 // 非业务错误统一对外返回此码
	CodeUnauthorized = 1006 // 连接未绑定用户
	CodeNotFound     = 1008
	CodeDBError      = 1010
	CodeCacheError   = 1011 // 缓存失败，调用方降级为直接读库
	CodeUploadError  = 1012
)

// CodeError 业务码 + 对外信息 + 可选的底层错误
type CodeError struct {
	Code  int
	Msg   string
	cause error
}

// Error 有底层错误时格式为 "msg: cause"
func (e *CodeError) Error() string {
	if e.cause == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s: %v", e.Msg, e.cause)
}

func (e *CodeError) Unwrap() error {
	return e.cause
}

func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误，msg 对外展示，err 只进日志
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg, cause: err}
}

func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{Code: code, Msg: fmt.Sprintf(format, args...), cause: err}
}

var (
	ErrInvalidParam = New(CodeInvalidParam, "请求参数错误")
	ErrServerBusy   = New(CodeServerBusy, "服务繁忙")
	ErrUnauthorized = New(CodeUnauthorized, "请先登录")
)

// GetCode 取错误链上第一个 CodeError 的码，没有则为 CodeServerBusy
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// Is 错误链上第一个 CodeError 的码是否为 code
func Is(err error, code int) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == code
}

// IsNotFound 包括未经包装的 gorm.ErrRecordNotFound
func IsNotFound(err error) bool {
	if Is(err, CodeNotFound) {
		return true
	}
	return err != nil && err.Error() == "record not found"
}
