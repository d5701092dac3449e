package handler

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

// Trans 校验错误翻译器，HTTP 参数错误与 WebSocket error 事件共用
var Trans ut.Translator

var translationRegistrars = map[string]func(*validator.Validate, ut.Translator) error{
	"en": en_translations.RegisterDefaultTranslations,
	"zh": zh_translations.RegisterDefaultTranslations,
}

// InitTrans 为 gin 的校验引擎注册 locale 对应的翻译
// 字段名取 json tag，提示里出现的是客户端实际发送的字段名（如 recipientId）
func InitTrans(locale string) error {
	if binding.Validator == nil {
		vd := validator.New()
		vd.SetTagName("binding")
		binding.Validator = &defaultValidator{validator: vd}
	}
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enT := en.New()
	uni := ut.New(enT, zh.New(), enT)
	trans, found := uni.GetTranslator(locale)
	if !found {
		return fmt.Errorf("uni.GetTranslator(%s) failed", locale)
	}

	register, ok := translationRegistrars[locale]
	if !ok {
		register = en_translations.RegisterDefaultTranslations
	}
	if err := register(v, trans); err != nil {
		return err
	}
	Trans = trans
	return nil
}

// RemoveTopStruct 去掉 "LoginRequest.username" 里的结构体前缀
func RemoveTopStruct(fields map[string]string) map[string]string {
	res := make(map[string]string, len(fields))
	for field, msg := range fields {
		res[field[strings.Index(field, ".")+1:]] = msg
	}
	return res
}

// defaultValidator binding.Validator 为空时的兜底实现
type defaultValidator struct {
	validator *validator.Validate
}

func (v *defaultValidator) ValidateStruct(obj any) error {
	return v.validator.Struct(obj)
}

func (v *defaultValidator) Engine() any {
	return v.validator
}
