// registry.go
// 核心职责：连接与用户身份的绑定表
// 1. 登录时原子 upsert 用户并绑定连接
// 2. 断开时释放绑定，用户没有剩余连接时标记离线
// 3. 提供按用户 ID 扇出的会话查询
package chat

import (
	"context"
	"strings"
	"sync"

	"chat_relay_server/internal/dao/mysql/repository"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/errorx"

	"go.uber.org/zap"
)

// Registry 会话注册表
// 绑定表的修改与对应的存储调用在同一把锁内完成，
// 保证"用户在线 当且仅当 存在绑定到该用户的存活连接"
type Registry struct {
	mu       sync.Mutex
	users    repository.UserRepository
	sessions map[string]*Session          // 全部存活连接（含匿名）
	bindings map[string]model.User        // 连接 ID -> 绑定用户快照
	byUser   map[uint]map[string]*Session // 用户 ID -> 存活连接
}

// NewRegistry 创建注册表
func NewRegistry(users repository.UserRepository) *Registry {
	return &Registry{
		users:    users,
		sessions: make(map[string]*Session),
		bindings: make(map[string]model.User),
		byUser:   make(map[uint]map[string]*Session),
	}
}

// Register 登记一条新建立的匿名连接
func (r *Registry) Register(sess *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess.setState(StateAnonymous)
	r.sessions[sess.ID] = sess
}

// NormalizeUsername 去掉首尾空白，结果为空时返回 CodeInvalidParam
func NormalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errorx.New(errorx.CodeInvalidParam, "用户名不能为空")
	}
	return username, nil
}

// Login 将连接绑定到 username 对应的用户
// 返回用户以及该用户是否因本次登录从离线变为在线
// 连接已绑定到同名用户时为幂等操作；绑定到其他用户时使用 Switch
func (r *Registry) Login(ctx context.Context, connId, username string) (*model.User, bool, error) {
	username, err := NormalizeUsername(username)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, err := r.liveLocked(connId)
	if err != nil {
		return nil, false, err
	}
	if bound, ok := r.bindings[connId]; ok {
		if bound.Username == username {
			user := bound
			return &user, false, nil
		}
		return nil, false, errorx.Newf(errorx.CodeInvalidParam, "连接已登录为 %s", bound.Username)
	}

	user, err := r.users.UpsertByUsername(ctx, username, connId)
	if err != nil {
		return nil, false, err
	}
	becameOnline := r.bindNewLocked(sess, *user)
	return user, becameOnline, nil
}

// Switch 把已登录的连接改绑到另一个用户名
// 先 upsert 新用户，失败时旧绑定保持不变；成功后再释放旧用户
// prev 为被释放的用户，连接未登录或已是同名用户时为 nil
func (r *Registry) Switch(ctx context.Context, connId, username string) (user *model.User, becameOnline bool, prev *model.User, prevOffline bool, err error) {
	username, err = NormalizeUsername(username)
	if err != nil {
		return nil, false, nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sess, err := r.liveLocked(connId)
	if err != nil {
		return nil, false, nil, false, err
	}
	bound, wasBound := r.bindings[connId]
	if wasBound && bound.Username == username {
		return &bound, false, nil, false, nil
	}

	user, err = r.users.UpsertByUsername(ctx, username, connId)
	if err != nil {
		return nil, false, nil, false, err
	}
	if wasBound {
		var relErr error
		prev, prevOffline, _, relErr = r.releaseLocked(ctx, connId)
		if relErr != nil {
			// 旧用户已从内存解绑，只记录存储错误，新绑定照常生效
			zap.L().Error("switch user: release previous", zap.String("session_id", connId), zap.Error(relErr))
		}
	}
	becameOnline = r.bindNewLocked(sess, *user)
	return user, becameOnline, prev, prevOffline, nil
}

func (r *Registry) liveLocked(connId string) (*Session, error) {
	sess, ok := r.sessions[connId]
	if !ok || sess.State() == StateTerminated {
		return nil, errorx.Newf(errorx.CodeUnauthorized, "连接 %s 已断开", connId)
	}
	return sess, nil
}

// bindNewLocked 绑定并返回用户是否因此上线
func (r *Registry) bindNewLocked(sess *Session, user model.User) bool {
	becameOnline := len(r.byUser[user.ID]) == 0
	r.bindLocked(sess, user)
	zap.L().Info("user login",
		zap.String("session_id", sess.ID),
		zap.Uint("user_id", user.ID),
		zap.String("username", user.Username),
		zap.Bool("became_online", becameOnline))
	return becameOnline
}

// Logout 释放连接上的用户绑定，连接本身保持存活（回到匿名状态）
// 返回被释放的用户、该用户是否因此离线、连接此前是否已绑定
func (r *Registry) Logout(ctx context.Context, connId string) (*model.User, bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, becameOffline, bound, err := r.releaseLocked(ctx, connId)
	if sess, ok := r.sessions[connId]; ok && bound {
		sess.setState(StateAnonymous)
	}
	return user, becameOffline, bound, err
}

// Disconnect 连接断开：释放绑定并移除连接，会话进入 terminated 状态
// 匿名连接只做移除
func (r *Registry) Disconnect(ctx context.Context, connId string) (*model.User, bool, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, becameOffline, bound, err := r.releaseLocked(ctx, connId)
	if sess, ok := r.sessions[connId]; ok {
		sess.setState(StateTerminated)
		sess.Close()
		delete(r.sessions, connId)
	}
	return user, becameOffline, bound, err
}

// releaseLocked 调用方需持有 r.mu
// 连接已不可用，因此即使存储失败也会移除内存绑定，错误原样返回
func (r *Registry) releaseLocked(ctx context.Context, connId string) (*model.User, bool, bool, error) {
	bound, ok := r.bindings[connId]
	if !ok {
		return nil, false, false, nil
	}
	r.unbindLocked(connId, bound.ID)

	// 还有其他存活连接：保持在线，把 session_id 改绑到其中一条
	var remaining string
	for id := range r.byUser[bound.ID] {
		remaining = id
		break
	}
	becameOffline := remaining == ""

	user, err := r.users.SetOnline(ctx, bound.ID, !becameOffline, remaining)
	if err != nil {
		zap.L().Error("release user binding",
			zap.String("session_id", connId),
			zap.Uint("user_id", bound.ID),
			zap.Error(err))
		user = &bound
		user.Online = !becameOffline
		user.SessionId = remaining
		return user, becameOffline, true, err
	}

	zap.L().Info("user released",
		zap.String("session_id", connId),
		zap.Uint("user_id", user.ID),
		zap.Bool("became_offline", becameOffline))
	return user, becameOffline, true, nil
}

func (r *Registry) bindLocked(sess *Session, user model.User) {
	r.bindings[sess.ID] = user
	conns, ok := r.byUser[user.ID]
	if !ok {
		conns = make(map[string]*Session)
		r.byUser[user.ID] = conns
	}
	conns[sess.ID] = sess
	sess.setState(StateAuthenticated)
}

func (r *Registry) unbindLocked(connId string, userId uint) {
	delete(r.bindings, connId)
	if conns, ok := r.byUser[userId]; ok {
		delete(conns, connId)
		if len(conns) == 0 {
			delete(r.byUser, userId)
		}
	}
}

// LookupByConnection 解析连接当前绑定的用户
func (r *Registry) LookupByConnection(connId string) (model.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.bindings[connId]
	return user, ok
}

// Require 解析连接绑定的用户，未登录返回 CodeUnauthorized
func (r *Registry) Require(connId string) (model.User, error) {
	user, ok := r.LookupByConnection(connId)
	if !ok {
		return model.User{}, errorx.ErrUnauthorized
	}
	return user, nil
}

// Session 按连接 ID 查找存活会话
func (r *Registry) Session(connId string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[connId]
	return sess, ok
}

// SessionsOf 返回用户的全部存活会话
func (r *Registry) SessionsOf(userId uint) []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := r.byUser[userId]
	out := make([]*Session, 0, len(conns))
	for _, sess := range conns {
		out = append(out, sess)
	}
	return out
}

// Sessions 返回全部存活会话（含匿名连接）
func (r *Registry) Sessions() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	return out
}

// OnlineCount 当前在线用户数（至少有一条存活连接绑定的用户）
func (r *Registry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

// ResetPresence 启动时调用，把存储中的在线标志全部清零
// 上次进程退出时遗留的在线状态没有对应的存活连接
func (r *Registry) ResetPresence(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bindings) > 0 {
		return errorx.New(errorx.CodeInvalidParam, "存在已登录连接，不能重置在线状态")
	}
	n, err := r.users.ResetPresence(ctx)
	if err != nil {
		return err
	}
	zap.L().Info("stale presence reset", zap.Int64("users", n))
	return nil
}
