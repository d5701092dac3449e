// Package chat 实现了聊天系统的核心服务层
// session.go
// 核心职责：单条连接在服务端的表示
// 1. 持有连接 ID（uuid）与生命周期状态
// 2. 提供有界下行队列，写满视为慢连接并关闭
package chat

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// SessionState 连接生命周期状态
type SessionState int32

const (
	StateAnonymous     SessionState = iota // 已建立连接，尚未登录
	StateAuthenticated                     // 已绑定用户
	StateTerminated                        // 已断开，不再接收任何事件
)

func (s SessionState) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// Session 一条存活连接
// 下行数据只通过 Enqueue 写入，由网关的写协程按 FIFO 顺序发出
type Session struct {
	ID string

	state     atomic.Int32
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession 创建匿名会话，queueSize 为下行队列长度
func NewSession(id string, queueSize int) *Session {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Session{
		ID:   id,
		send: make(chan []byte, queueSize),
		done: make(chan struct{}),
	}
}

// State 当前状态
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

func (s *Session) setState(state SessionState) {
	s.state.Store(int32(state))
}

// Outbound 写协程消费的下行队列
func (s *Session) Outbound() <-chan []byte {
	return s.send
}

// Done 会话关闭后可读
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Enqueue 非阻塞入队
// 队列已满时关闭会话，由网关读协程感知后走正常断开流程
func (s *Session) Enqueue(data []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- data:
		return true
	default:
		zap.L().Warn("session send queue full, closing slow connection", zap.String("session_id", s.ID))
		s.Close()
		return false
	}
}

// Close 关闭会话，可重复调用
// send 通道不关闭，避免与并发 Enqueue 竞争
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}
