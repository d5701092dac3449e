package errorx

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCodeError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrapf(cause, CodeDBError, "create message %d", 42)

	require.Equal(t, "create message 42: connection refused", err.Error())
	require.ErrorIs(t, err, cause)
	require.Equal(t, CodeDBError, GetCode(err))
}

func TestGetCode(t *testing.T) {
	require.Equal(t, CodeInvalidParam, GetCode(ErrInvalidParam))
	require.Equal(t, CodeUnauthorized, GetCode(fmt.Errorf("send: %w", ErrUnauthorized)))
	require.Equal(t, CodeServerBusy, GetCode(errors.New("boom")))
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("login: %w", New(CodeDBError, "upsert user"))
	require.True(t, Is(err, CodeDBError))
	require.False(t, Is(err, CodeCacheError))
	require.False(t, Is(nil, CodeDBError))
}

func TestIsNotFound(t *testing.T) {
	require.True(t, IsNotFound(New(CodeNotFound, "message not found")))
	require.True(t, IsNotFound(gorm.ErrRecordNotFound))
	require.False(t, IsNotFound(New(CodeDBError, "db down")))
	require.False(t, IsNotFound(nil))
}
