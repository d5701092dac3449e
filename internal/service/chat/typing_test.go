package chat

import (
	"testing"

	"chat_relay_server/internal/dto/respond"
	"chat_relay_server/pkg/errorx"

	"github.com/stretchr/testify/require"
)

func TestTyping_ForwardsToRecipientSessions(t *testing.T) {
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

	require.NoError(t, h.server.NotifyTyping(h.ctx, "c1", bob.ID))

	for _, sess := range []*Session{b1, b2} {
		typing := named(drain(t, sess), EventUserTyping)
		require.Len(t, typing, 1)
		require.Equal(t, respond.UserTypingRespond{UserId: alice.ID, ExpiresInMs: 3000}, decode[respond.UserTypingRespond](t, typing[0]))
	}
	require.Empty(t, drain(t, a))
}

func TestTyping_Errors(t *testing.T) {
	h := newHarness(t)
	h.connect("c1")

	err := h.server.NotifyTyping(h.ctx, "c1", 2)
	requireCode(t, err, errorx.CodeUnauthorized)

	h.login("c1", "alice")
	err = h.server.NotifyTyping(h.ctx, "c1", 0)
	requireCode(t, err, errorx.CodeInvalidParam)

	// 接收者离线时直接丢弃
	require.NoError(t, h.server.NotifyTyping(h.ctx, "c1", 42))
}
