// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接入口
package handler

import (
	"context"

	ws "chat_relay_server/internal/gateway/websocket"

	"github.com/gin-gonic/gin"
)

// WsHandler WebSocket 处理器
type WsHandler struct {
	gateway *ws.Gateway
}

// NewWsHandler 创建 WebSocket 处理器
func NewWsHandler(gateway *ws.Gateway) *WsHandler {
	return &WsHandler{gateway: gateway}
}

// Connect 升级为 WebSocket 连接
// GET /ws
// 连接建立后为匿名会话，需要发送 login 事件绑定用户
func (h *WsHandler) Connect(c *gin.Context) {
	h.gateway.Serve(c)
}

// Wait 等待全部 WebSocket 连接完成断开流程
func (h *WsHandler) Wait(ctx context.Context) error {
	return h.gateway.Wait(ctx)
}
