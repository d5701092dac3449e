// Package handler HTTP 与 WebSocket 入口处理器
// 参数校验失败和业务错误都转换为统一的 {code,msg,data} 响应
package handler

import (
	"chat_relay_server/internal/config"
	ws "chat_relay_server/internal/gateway/websocket"
	"chat_relay_server/internal/service"
)

// Handlers 路由层使用的处理器集合
type Handlers struct {
	Ws      *WsHandler
	Message *MessageHandler
}

// NewHandlers WebSocket 网关在这里创建，校验错误翻译使用 TranslateError
func NewHandlers(svc *service.Services, wsCfg config.WsConfig) *Handlers {
	return &Handlers{
		Ws:      NewWsHandler(ws.NewGateway(svc.Chat, wsCfg, TranslateError)),
		Message: NewMessageHandler(svc.Message),
	}
}
