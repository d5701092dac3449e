// Package websocket WebSocket 网关
// 负责连接升级、每条连接的读写协程，以及上行事件到 ChatServer 的分发
package websocket

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"chat_relay_server/internal/config"
	"chat_relay_server/internal/service/chat"
	"chat_relay_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Gateway WebSocket 网关
type Gateway struct {
	server         *chat.ChatServer
	upgrader       websocket.Upgrader
	maxMessageSize int64
	translate      func(error) string

	mu       sync.Mutex
	draining bool
	clients  sync.WaitGroup // 读协程仍在运行（尚未完成 Disconnect）的连接
}

// NewGateway 创建网关
// translate 把参数校验错误翻译成提示信息，为 nil 时使用 err.Error()
func NewGateway(server *chat.ChatServer, cfg config.WsConfig, translate func(error) string) *Gateway {
	if translate == nil {
		translate = func(err error) string { return err.Error() }
	}
	return &Gateway{
		server: server,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// 跨域由 CORS 中间件统一控制，这里允许任意 Origin
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		maxMessageSize: cfg.MaxMessageSize,
		translate:      translate,
	}
}

// Serve 升级 HTTP 连接并启动读写协程
// 读协程在当前 goroutine 中运行，直到连接断开
func (g *Gateway) Serve(c *gin.Context) {
	if !g.acquire() {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	defer g.clients.Done()

	conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已向客户端写入 HTTP 错误
		zap.L().Error("ws upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:    conn,
		session: g.server.Connect(uuid.NewString()),
		gateway: g,
	}
	go client.Write()
	client.Read(context.Background())
}

func (g *Gateway) acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.draining {
		return false
	}
	g.clients.Add(1)
	return true
}

// Wait 拒绝新连接并等待所有连接的断开流程执行完毕
// 关闭会话后、关闭数据库前调用，保证每个在线用户都被标记为离线
func (g *Gateway) Wait(ctx context.Context) error {
	g.mu.Lock()
	g.draining = true
	g.mu.Unlock()

	done := make(chan struct{})
	go func() {
		g.clients.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// rejectMessage 从错误中取出展示给客户端的错误码与信息
// 非业务错误统一返回服务繁忙，不暴露内部细节
func rejectMessage(err error) (int, string) {
	var codeErr *errorx.CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code, codeErr.Msg
	}
	return errorx.CodeServerBusy, errorx.ErrServerBusy.Msg
}
