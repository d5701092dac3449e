// Package https_server 提供 HTTP/HTTPS 服务器的初始化和配置
// 负责创建 Gin 引擎实例并配置中间件、静态资源和路由
package https_server

import (
	"chat_relay_server/internal/config"                   // 配置管理
	"chat_relay_server/internal/handler"                  // Handler 聚合对象
	"chat_relay_server/internal/infrastructure/logger"    // 自定义日志中间件
	"chat_relay_server/internal/infrastructure/middleware" // TLS 重定向
	"chat_relay_server/internal/router"                   // 路由注册

	"github.com/gin-contrib/cors" // CORS 跨域中间件
	"github.com/gin-gonic/gin"    // Gin Web 框架
)

// Init 初始化 HTTP/HTTPS 服务器并返回 Gin 引擎实例
// 配置顺序：
//  1. 创建 Gin 引擎（空白，不含默认中间件）
//  2. 注册日志和恢复中间件
//  3. 配置 CORS 跨域规则，按需启用 TLS 重定向
//  4. 映射上传文件目录
//  5. 注册业务路由
func Init(handlers *handler.Handlers, cfg *config.Config) *gin.Engine {
	engine := gin.New()

	engine.Use(logger.GinLogger())
	engine.Use(logger.GinRecovery(true))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // 允许所有来源（生产环境应指定具体域名）
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}
	engine.Use(cors.New(corsConfig))

	if cfg.MainConfig.TlsRedirect {
		engine.Use(middleware.TlsHandler(cfg.MainConfig.Host, cfg.MainConfig.Port))
	}

	// /static/files -> 上传文件目录，与 blob.LocalStore 生成的 URL 对应
	engine.Static("/static/files", cfg.StaticSrcConfig.StaticFilePath)

	rt := router.NewRouter(handlers)
	rt.RegisterRoutes(engine)

	return engine
}
