// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由
// 包括消息历史查询、名册和文件上传
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	rg.GET("/messages/:userId", rt.handlers.Message.GetMessageList) // 获取用户的全部消息
	rg.GET("/users", rt.handlers.Message.ListUsers)                 // 获取名册
	rg.POST("/upload", rt.handlers.Message.UploadFile)              // 上传聊天文件
}
