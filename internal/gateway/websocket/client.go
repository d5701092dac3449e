package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"chat_relay_server/internal/dto/request"
	"chat_relay_server/internal/service/chat"
	"chat_relay_server/pkg/errorx"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// 上行事件名
const (
	EventLogin       = "login"
	EventSendMessage = "send_message"
	EventTyping      = "typing"
	EventMarkRead    = "mark_read"
	EventDisconnect  = "disconnect"
)

const writeWait = 10 * time.Second

// Client 一条 WebSocket 连接
// Read 串行处理上行事件，Write 按 FIFO 发出会话下行队列，二者是该连接仅有的两个协程
type Client struct {
	conn    *websocket.Conn
	session *chat.Session
	gateway *Gateway
}

// Read 读取并逐条同步分发上行事件
// 返回时（连接错误或显式 disconnect）执行断开流程
func (c *Client) Read(ctx context.Context) {
	defer func() {
		c.gateway.server.Disconnect(ctx, c.session.ID)
		_ = c.conn.Close()
	}()

	if c.gateway.maxMessageSize > 0 {
		c.conn.SetReadLimit(c.gateway.maxMessageSize)
	}

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				zap.L().Warn("ws read error", zap.String("session_id", c.session.ID), zap.Error(err))
			}
			return
		}

		var env request.Envelope
		if err := json.Unmarshal(data, &env); err != nil || env.Event == "" {
			c.reject("", errorx.New(errorx.CodeInvalidParam, "事件格式错误"))
			continue
		}
		if stop := c.dispatch(ctx, env); stop {
			return
		}
	}
}

// dispatch 返回 true 表示客户端请求断开
func (c *Client) dispatch(ctx context.Context, env request.Envelope) bool {
	var err error
	switch env.Event {
	case EventLogin:
		var req request.LoginRequest
		if err = c.bind(env.Data, &req); err == nil {
			_, err = c.gateway.server.Login(ctx, c.session.ID, req.Username)
		}
	case EventSendMessage:
		var req request.SendMessageRequest
		if err = c.bind(env.Data, &req); err == nil {
			if len(req.FileData) > 0 {
				_, err = c.gateway.server.SendFile(ctx, c.session.ID, uint(req.RecipientId), req.FileName, req.FileData)
			} else {
				_, err = c.gateway.server.Send(ctx, c.session.ID, uint(req.RecipientId), req.Content, req.Type)
			}
		}
	case EventTyping:
		var req request.TypingRequest
		if err = c.bind(env.Data, &req); err == nil {
			err = c.gateway.server.NotifyTyping(ctx, c.session.ID, uint(req.RecipientId))
		}
	case EventMarkRead:
		var req request.MarkReadRequest
		if err = c.bind(env.Data, &req); err == nil {
			err = c.gateway.server.MarkRead(ctx, c.session.ID, int64(req.MessageId))
		}
	case EventDisconnect:
		return true
	default:
		err = errorx.Newf(errorx.CodeInvalidParam, "未知事件: %s", env.Event)
	}

	if err != nil {
		c.reject(env.Event, err)
	}
	return false
}

// bind 解析载荷并用 gin 的 validator 校验 binding 标签
func (c *Client) bind(raw json.RawMessage, obj any) error {
	if len(raw) == 0 {
		return errorx.New(errorx.CodeInvalidParam, "缺少事件数据")
	}
	if err := json.Unmarshal(raw, obj); err != nil {
		return errorx.Wrap(err, errorx.CodeInvalidParam, "事件数据格式错误")
	}
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return errorx.Wrap(err, errorx.CodeInvalidParam, c.gateway.translate(err))
		}
		return errorx.Wrap(err, errorx.CodeInvalidParam, "请求参数错误")
	}
	return nil
}

// reject 记录日志并向当前连接下发 error 事件
func (c *Client) reject(event string, err error) {
	code, msg := rejectMessage(err)
	zap.L().Info("ws event rejected",
		zap.String("session_id", c.session.ID),
		zap.String("event", event),
		zap.Int("code", code),
		zap.Error(err))

	data, encErr := chat.EncodeError(code, msg, event)
	if encErr != nil {
		zap.L().Error("encode error event", zap.Error(encErr))
		return
	}
	c.session.Enqueue(data)
}

// Write 把会话下行队列写入连接
// 会话关闭（显式断开、慢连接、服务关闭）时发送 close 帧并关闭连接，读协程随之退出
func (c *Client) Write() {
	defer func() {
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.session.Outbound():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				zap.L().Warn("ws write error", zap.String("session_id", c.session.ID), zap.Error(err))
				c.session.Close()
				return
			}
		case <-c.session.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
