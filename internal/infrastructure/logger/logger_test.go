package logger

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"chat_relay_server/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONToRotatedFile(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.LogConfig{LogPath: dir, Level: "debug"}

	lg, err := New(cfg, "release")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "app.log"), cfg.FileName)
	require.Equal(t, 100, cfg.MaxSize)

	lg.Info("roster broadcast", zap.Int("users", 2))
	require.NoError(t, lg.Sync())

	data, err := os.ReadFile(cfg.FileName)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"roster broadcast"`)
	require.Contains(t, string(data), `"users":2`)
}

func TestNew_RejectsBadInput(t *testing.T) {
	_, err := New(nil, "dev")
	require.Error(t, err)

	_, err = New(&config.LogConfig{LogPath: t.TempDir(), Level: "loud"}, "dev")
	require.Error(t, err)
}

func TestGinRecovery_Returns500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(GinLogger(), GinRecovery(true))
	engine.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestIsBrokenPipe(t *testing.T) {
	require.True(t, isBrokenPipe(fmt.Errorf("write: %w", syscall.EPIPE)))
	require.True(t, isBrokenPipe(fmt.Errorf("read: %w", syscall.ECONNRESET)))
	require.True(t, isBrokenPipe(errors.New("write tcp: broken pipe")))
	require.False(t, isBrokenPipe(errors.New("timeout")))
}
