package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"chat_relay_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/require"
)

type loginForm struct {
	Username string `json:"username" binding:"required"`
}

func serve(t *testing.T, h gin.HandlerFunc) ResponseData {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/users", nil)
	h(c)

	require.Equal(t, http.StatusOK, w.Code)
	var rsp ResponseData
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp))
	return rsp
}

func TestHandleError(t *testing.T) {
	rsp := serve(t, func(c *gin.Context) {
		HandleError(c, errorx.Wrap(errors.New("disk full"), errorx.CodeUploadError, "文件上传失败"))
	})
	require.Equal(t, errorx.CodeUploadError, rsp.Code)
	require.Equal(t, "文件上传失败", rsp.Msg)

	rsp = serve(t, func(c *gin.Context) { HandleError(c, errors.New("unexpected")) })
	require.Equal(t, errorx.CodeServerBusy, rsp.Code)
}

func TestHandleParamError_TranslatesFields(t *testing.T) {
	require.NoError(t, InitTrans("en"))
	err := binding.Validator.ValidateStruct(&loginForm{})
	require.Error(t, err)

	rsp := serve(t, func(c *gin.Context) { HandleParamError(c, err) })
	require.Equal(t, errorx.CodeInvalidParam, rsp.Code)
	require.Equal(t, map[string]any{"username": "username is a required field"}, rsp.Msg)

	require.Equal(t, "username is a required field", TranslateError(err))
	require.Equal(t, "plain", TranslateError(errors.New("plain")))
}

func TestInitTrans_UnknownLocale(t *testing.T) {
	require.Error(t, InitTrans("fr"))
}
