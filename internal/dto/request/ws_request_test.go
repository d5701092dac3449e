package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginRequest_AcceptsBareStringAndObject(t *testing.T) {
	var bare LoginRequest
	require.NoError(t, json.Unmarshal([]byte(`"alice"`), &bare))
	require.Equal(t, "alice", bare.Username)

	var obj LoginRequest
	require.NoError(t, json.Unmarshal([]byte(`{"username":"bob"}`), &obj))
	require.Equal(t, "bob", obj.Username)

	var bad LoginRequest
	require.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestMarkReadRequest_AcceptsStringAndNumberIds(t *testing.T) {
	cases := map[string]ID{
		`"1799999999999999999"`:               1799999999999999999,
		`17`:                                  17,
		`{"messageId":"1799999999999999999"}`: 1799999999999999999,
		`{"messageId":17}`:                    17,
	}
	for raw, want := range cases {
		var req MarkReadRequest
		require.NoError(t, json.Unmarshal([]byte(raw), &req), raw)
		require.Equal(t, want, req.MessageId, raw)
	}

	var req MarkReadRequest
	require.Error(t, json.Unmarshal([]byte(`"abc"`), &req))
}

func TestSendMessageRequest_DecodesBase64FileData(t *testing.T) {
	var req SendMessageRequest
	raw := `{"recipientId":"2","type":"file","fileName":"a.txt","fileData":"aGVsbG8="}`
	require.NoError(t, json.Unmarshal([]byte(raw), &req))

	require.EqualValues(t, 2, req.RecipientId)
	require.Equal(t, "file", req.Type)
	require.Equal(t, []byte("hello"), req.FileData)
}

func TestTypingRequest_Null(t *testing.T) {
	var req TypingRequest
	require.NoError(t, json.Unmarshal([]byte(`null`), &req))
	require.Zero(t, req.RecipientId)
}
