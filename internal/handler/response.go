package handler

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"chat_relay_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ResponseData HTTP 响应外层结构，业务结果由 code 区分，HTTP 状态码恒为 200
type ResponseData struct {
	Code int `json:"code"`
	Msg  any `json:"msg"`
	Data any `json:"data"`
}

func reply(c *gin.Context, code int, msg, data any) {
	c.JSON(http.StatusOK, ResponseData{Code: code, Msg: msg, Data: data})
}

// HandleSuccess 返回成功响应
func HandleSuccess(c *gin.Context, data any) {
	reply(c, errorx.CodeSuccess, "success", data)
}

// HandleError 业务错误原样返回码与信息，其余错误记录日志后返回服务繁忙
func HandleError(c *gin.Context, err error) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		reply(c, codeErr.Code, codeErr.Msg, nil)
		return
	}

	zap.L().Error("system error",
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method),
		zap.Error(err),
	)
	reply(c, errorx.ErrServerBusy.Code, errorx.ErrServerBusy.Msg, nil)
}

// HandleParamError 参数绑定失败
// 校验错误返回按字段翻译后的提示，JSON 格式等其他错误只返回通用提示
func HandleParamError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && Trans != nil {
		reply(c, errorx.CodeInvalidParam, RemoveTopStruct(validationErrs.Translate(Trans)), nil)
		return
	}

	zap.L().Info("param bind error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	reply(c, errorx.CodeInvalidParam, errorx.ErrInvalidParam.Msg, nil)
}

// TranslateError 把校验错误翻译为单行提示，字段按名称排序，供 WebSocket error 事件使用
func TranslateError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || Trans == nil {
		return err.Error()
	}
	fields := RemoveTopStruct(validationErrs.Translate(Trans))
	keys := make([]string, 0, len(fields))
	for field := range fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, fields[k])
	}
	return strings.Join(msgs, "; ")
}
