package chat

import (
	"errors"
	"strconv"
	"testing"

	"chat_relay_server/internal/model"
	"chat_relay_server/pkg/errorx"

	"github.com/stretchr/testify/require"
)

func TestRouter_SendRequiresLogin(t *testing.T) {
	h := newHarness(t)
	h.connect("c1")

	_, err := h.server.Send(h.ctx, "c1", 1, "hi", "text")
	requireCode(t, err, errorx.CodeUnauthorized)
}

func TestRouter_SendValidation(t *testing.T) {
	h := newHarness(t)
	h.connect("c1")
	h.connect("c2")
	alice := h.login("c1", "alice")
	bob := h.login("c2", "bob")

	_, err := h.server.Send(h.ctx, "c1", bob.ID, "  ", "text")
	requireCode(t, err, errorx.CodeInvalidParam)

	_, err = h.server.Send(h.ctx, "c1", bob.ID, "hi", "video")
	requireCode(t, err, errorx.CodeInvalidParam)

	_, err = h.server.Send(h.ctx, "c1", 9999, "hi", "text")
	requireCode(t, err, errorx.CodeInvalidParam)

	_, err = h.server.Send(h.ctx, "c1", 0, "hi", "text")
	requireCode(t, err, errorx.CodeInvalidParam)

	stored, err := h.repos.Message.FindByUserId(h.ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, stored)
	require.Empty(t, h.journal.messages)
}

func TestRouter_SendDeliversToEveryRecipientSession(t *testing.T) {
	h := newHarness(t)
	a := h.connect("c1")
	b1 := h.connect("c2")
	b2 := h.connect("c3")
	alice := h.login("c1", "alice")
	bob := h.login("c2", "bob")
	h.login("c3", "bob")
	drain(t, a)
	drain(t, b1)
	drain(t, b2)

	msg, err := h.server.Send(h.ctx, "c1", bob.ID, "hi", "")
	require.NoError(t, err)
	require.Equal(t, alice.ID, msg.SenderId)
	require.Equal(t, bob.ID, msg.RecipientId)
	require.Equal(t, "text", msg.Type)
	require.False(t, msg.Read)

	// Then both of bob's sessions receive the message
	for _, sess := range []*Session{b1, b2} {
		delivered := named(drain(t, sess), EventNewMessage)
		require.Len(t, delivered, 1)
		got := decode[model.Message](t, delivered[0])
		require.Equal(t, msg.ID, got.ID)
		require.Equal(t, "hi", got.Content)
	}

	// And the sender gets an echo with the persisted id
	sent := named(drain(t, a), EventMessageSent)
	require.Len(t, sent, 1)
	require.Equal(t, msg.ID, decode[model.Message](t, sent[0]).ID)

	// And the message is persisted, journaled and the history cache invalidated
	stored, err := h.repos.Message.FindById(h.ctx, msg.ID)
	require.NoError(t, err)
	require.Equal(t, "hi", stored.Content)
	require.Equal(t, []int64{msg.ID}, h.journal.messages)
	require.ElementsMatch(t, []uint{alice.ID, bob.ID}, h.history.users)
}

func TestRouter_SendToOfflineRecipientIsStoredOnly(t *testing.T) {
	h := newHarness(t)
	a := h.connect("c1")
	h.connect("c2")
	alice := h.login("c1", "alice")
	bob := h.login("c2", "bob")
	h.server.Disconnect(h.ctx, "c2")
	drain(t, a)

	msg, err := h.server.Send(h.ctx, "c1", bob.ID, "are you there?", "text")
	require.NoError(t, err)

	// 离线消息对双方都可查询
	for _, id := range []uint{alice.ID, bob.ID} {
		history, err := h.repos.Message.FindByUserId(h.ctx, id)
		require.NoError(t, err)
		require.Len(t, history, 1)
		require.Equal(t, msg.ID, history[0].ID)
	}
	require.Empty(t, named(drain(t, a), EventNewMessage))
}

func TestRouter_SendFileUploadsThenPersists(t *testing.T) {
	h := newHarness(t)
	h.connect("c1")
	b := h.connect("c2")
	h.login("c1", "alice")
	bob := h.login("c2", "bob")
	drain(t, b)

	msg, err := h.server.SendFile(h.ctx, "c1", bob.ID, "notes.txt", []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, "file", msg.Type)
	require.Equal(t, "http://files.test/static/files/notes.txt", msg.Content)
	require.Equal(t, []string{"notes.txt"}, h.blob.calls)

	var uploads []model.Upload
	require.NoError(t, h.db.Find(&uploads).Error)
	require.Len(t, uploads, 1)
	require.Equal(t, msg.Content, uploads[0].Url)
	require.EqualValues(t, 5, uploads[0].FileSize)

	delivered := named(drain(t, b), EventNewMessage)
	require.Len(t, delivered, 1)
	require.Equal(t, "file", decode[model.Message](t, delivered[0]).Type)
}

func TestRouter_SendFileUploadFailureCreatesNoMessage(t *testing.T) {
	h := newHarness(t)
	h.connect("c1")
	b := h.connect("c2")
	alice := h.login("c1", "alice")
	bob := h.login("c2", "bob")
	drain(t, b)
	h.blob.err = errors.New("disk full")

	_, err := h.server.SendFile(h.ctx, "c1", bob.ID, "notes.txt", []byte("hello"))
	requireCode(t, err, errorx.CodeUploadError)

	history, err := h.repos.Message.FindByUserId(h.ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, history)
	require.Empty(t, named(drain(t, b), EventNewMessage))

	var count int64
	require.NoError(t, h.db.Model(&model.Upload{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestRouter_MarkReadNotifiesSenderOnce(t *testing.T) {
	h := newHarness(t)
	a := h.connect("c1")
	h.connect("c2")
	h.login("c1", "alice")
	bob := h.login("c2", "bob")
	msg, err := h.server.Send(h.ctx, "c1", bob.ID, "hi", "text")
	require.NoError(t, err)
	drain(t, a)

	require.NoError(t, h.server.MarkRead(h.ctx, "c2", msg.ID))

	reads := named(drain(t, a), EventMessageRead)
	require.Len(t, reads, 1)
	require.Equal(t, strconv.FormatInt(msg.ID, 10), decode[string](t, reads[0]))

	stored, err := h.repos.Message.FindById(h.ctx, msg.ID)
	require.NoError(t, err)
	require.True(t, stored.Read)

	// 重复标记为空操作
	require.NoError(t, h.server.MarkRead(h.ctx, "c2", msg.ID))
	require.Empty(t, named(drain(t, a), EventMessageRead))
	require.Equal(t, []int64{msg.ID}, h.journal.reads)
}

func TestRouter_MarkReadErrors(t *testing.T) {
	h := newHarness(t)
	h.connect("c1")
	h.connect("c2")

	err := h.server.MarkRead(h.ctx, "c1", 1)
	requireCode(t, err, errorx.CodeUnauthorized)

	h.login("c2", "bob")
	err = h.server.MarkRead(h.ctx, "c2", 12345)
	requireCode(t, err, errorx.CodeNotFound)

	err = h.server.MarkRead(h.ctx, "c2", 0)
	requireCode(t, err, errorx.CodeInvalidParam)
}

func TestRouter_SendStoreFailureDeliversNothing(t *testing.T) {
	h := newHarness(t)
	a := h.connect("c1")
	b := h.connect("c2")
	alice := h.login("c1", "alice")
	bob := h.login("c2", "bob")
	drain(t, a)
	drain(t, b)

	// Given the message store is failing
	h.messages.fail(errStoreDown)

	_, err := h.server.Send(h.ctx, "c1", bob.ID, "hi", "text")
	requireCode(t, err, errorx.CodeDBError)

	// Then neither side sees anything and nothing is journaled
	require.Empty(t, drain(t, a))
	require.Empty(t, drain(t, b))
	require.Empty(t, h.journal.messages)
	require.Empty(t, h.history.users)

	h.messages.fail(nil)
	history, err := h.repos.Message.FindByUserId(h.ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestRouter_MarkReadStoreFailureSendsNoReceipt(t *testing.T) {
	h := newHarness(t)
	a := h.connect("c1")
	h.connect("c2")
	h.login("c1", "alice")
	bob := h.login("c2", "bob")
	msg, err := h.server.Send(h.ctx, "c1", bob.ID, "hi", "text")
	require.NoError(t, err)
	drain(t, a)

	h.messages.fail(errStoreDown)
	err = h.server.MarkRead(h.ctx, "c2", msg.ID)
	requireCode(t, err, errorx.CodeDBError)

	require.Empty(t, named(drain(t, a), EventMessageRead))
	require.Empty(t, h.journal.reads)

	// 存储恢复后仍可正常标记
	h.messages.fail(nil)
	stored, err := h.repos.Message.FindById(h.ctx, msg.ID)
	require.NoError(t, err)
	require.False(t, stored.Read)
	require.NoError(t, h.server.MarkRead(h.ctx, "c2", msg.ID))
	require.Len(t, named(drain(t, a), EventMessageRead), 1)
}
