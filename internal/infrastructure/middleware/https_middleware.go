// Package middleware gin 中间件
package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// TlsHandler 将 HTTP 请求重定向到 HTTPS
// 由 Nginx 终止 SSL 时不要启用（mainConfig.tlsRedirect = false）
func TlsHandler(host string, port int) gin.HandlerFunc {
	// 只创建一次，避免每个请求重复构造
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect: true,
		SSLHost:     host + ":" + strconv.Itoa(port),
	})

	return func(c *gin.Context) {
		// 发生重定向时 secure 已写入 301 响应并返回 error
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			// 中间件内不能 Fatal，记录后终止当前请求
			zap.L().Debug("TLS redirection", zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.Abort()
			return
		}
		c.Next()
	}
}
