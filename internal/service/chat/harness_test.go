package chat

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"
	"testing"

	"chat_relay_server/internal/config"
	dao "chat_relay_server/internal/dao/mysql"
	"chat_relay_server/internal/dao/mysql/repository"
	"chat_relay_server/internal/infrastructure/blob"
	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/errorx"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeBlob struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeBlob) Upload(_ context.Context, name string, data []byte) (*blob.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, f.err
	}
	return &blob.Object{
		URL:      "http://files.test/static/files/" + name,
		FileName: name,
		FileType: "text/plain; charset=utf-8",
		Size:     int64(len(data)),
	}, nil
}

type recordingJournal struct {
	mu       sync.Mutex
	messages []int64
	reads    []int64
}

func (j *recordingJournal) PublishMessage(_ context.Context, msg *model.Message) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.messages = append(j.messages, msg.ID)
}

func (j *recordingJournal) PublishRead(_ context.Context, messageId int64, _ uint) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reads = append(j.reads, messageId)
}

func (j *recordingJournal) Close() error { return nil }

type recordingInvalidator struct {
	mu    sync.Mutex
	users []uint
}

func (r *recordingInvalidator) Invalidate(_ context.Context, userIds ...uint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userIds...)
}

// flakyUsers 可注入存储错误的 UserRepository
type flakyUsers struct {
	repository.UserRepository
	mu  sync.Mutex
	err error
}

func (f *flakyUsers) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *flakyUsers) failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *flakyUsers) UpsertByUsername(ctx context.Context, username, sessionId string) (*model.User, error) {
	if err := f.failure(); err != nil {
		return nil, err
	}
	return f.UserRepository.UpsertByUsername(ctx, username, sessionId)
}

func (f *flakyUsers) SetOnline(ctx context.Context, userId uint, online bool, sessionId string) (*model.User, error) {
	if err := f.failure(); err != nil {
		return nil, err
	}
	return f.UserRepository.SetOnline(ctx, userId, online, sessionId)
}

// flakyMessages 可注入存储错误的 MessageRepository
type flakyMessages struct {
	repository.MessageRepository
	mu  sync.Mutex
	err error
}

func (f *flakyMessages) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *flakyMessages) failure() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *flakyMessages) Create(ctx context.Context, message *model.Message) error {
	if err := f.failure(); err != nil {
		return err
	}
	return f.MessageRepository.Create(ctx, message)
}

func (f *flakyMessages) MarkRead(ctx context.Context, messageId int64) (*model.Message, bool, error) {
	if err := f.failure(); err != nil {
		return nil, false, err
	}
	return f.MessageRepository.MarkRead(ctx, messageId)
}

var errStoreDown = errorx.New(errorx.CodeDBError, "store unavailable")

type harness struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	repos    *repository.Repositories
	users    *flakyUsers
	messages *flakyMessages
	blob     *fakeBlob
	journal  *recordingJournal
	history  *recordingInvalidator
	server   *ChatServer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := dao.Open(config.MysqlConfig{
		Driver:     "sqlite",
		SqlitePath: filepath.Join(t.TempDir(), "chat.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repos := repository.NewRepositories(db)
	users := &flakyUsers{UserRepository: repos.User}
	messages := &flakyMessages{MessageRepository: repos.Message}
	repos.User = users
	repos.Message = messages

	h := &harness{
		t:        t,
		ctx:      context.Background(),
		db:       db,
		repos:    repos,
		users:    users,
		messages: messages,
		blob:     &fakeBlob{},
		journal:  &recordingJournal{},
		history:  &recordingInvalidator{},
	}
	h.server = h.newServer()
	return h
}

// newServer 在同一存储上创建新的 ChatServer，模拟进程重启
func (h *harness) newServer() *ChatServer {
	return NewChatServer(ChatServerConfig{
		Repos:     h.repos,
		Blob:      h.blob,
		Journal:   h.journal,
		History:   h.history,
		QueueSize: 64,
	})
}

func (h *harness) connect(id string) *Session {
	return h.server.Connect(id)
}

func (h *harness) login(connId, username string) *model.User {
	h.t.Helper()
	user, err := h.server.Login(h.ctx, connId, username)
	require.NoError(h.t, err)
	return user
}

func (h *harness) storedUser(id uint) *model.User {
	h.t.Helper()
	user, err := h.repos.User.FindById(h.ctx, id)
	require.NoError(h.t, err)
	return user
}

type event struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// drain 取出会话当前已入队的全部下行事件
func drain(t *testing.T, sess *Session) []event {
	t.Helper()
	var out []event
	for {
		select {
		case raw := <-sess.Outbound():
			var e event
			require.NoError(t, json.Unmarshal(raw, &e))
			out = append(out, e)
		default:
			return out
		}
	}
}

func named(events []event, name string) []event {
	var out []event
	for _, e := range events {
		if e.Event == name {
			out = append(out, e)
		}
	}
	return out
}

func decode[T any](t *testing.T, e event) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(e.Data, &v))
	return v
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	require.Truef(t, errorx.Is(err, code), "want code %d, got %v", code, err)
}
