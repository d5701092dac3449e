package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chat_relay_server/internal/config"
	dao "chat_relay_server/internal/dao/mysql"
	"chat_relay_server/internal/dao/mysql/repository"
	myredis "chat_relay_server/internal/dao/redis"
	"chat_relay_server/internal/handler"
	"chat_relay_server/internal/https_server"
	"chat_relay_server/internal/infrastructure/blob"
	"chat_relay_server/internal/infrastructure/logger"
	"chat_relay_server/internal/infrastructure/mq"
	"chat_relay_server/internal/service"
	"chat_relay_server/pkg/util/snowflake"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()
	if conf.MainConfig.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer func() { _ = zap.L().Sync() }()
	zap.L().Info("日志初始化成功")

	// 3. 参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("初始化翻译器失败", zap.Error(err))
	}

	// 4. 雪花算法节点
	if err := snowflake.Init(conf.SnowflakeConfig.MachineID); err != nil {
		zap.L().Fatal("雪花算法节点初始化失败", zap.Error(err))
	}

	// 5. 初始化数据库
	db, err := dao.Open(conf.MysqlConfig)
	if err != nil {
		zap.L().Fatal("数据库初始化失败", zap.Error(err))
	}
	repos := repository.NewRepositories(db)
	zap.L().Info("数据库初始化成功", zap.String("driver", conf.MysqlConfig.Driver))

	// 6. 初始化 Redis（可选）
	var cache myredis.AsyncCacheService
	var redisCache *myredis.RedisCache
	if conf.RedisConfig.Enabled {
		redisCache, err = myredis.Init(conf.RedisConfig)
		if err != nil {
			// 缓存不可用不影响正确性，退化为直接查库
			zap.L().Error("Redis 初始化失败，历史消息缓存关闭", zap.Error(err))
		} else {
			cache = redisCache
			zap.L().Info("Redis 初始化成功")
		}
	}

	// 7. 文件存储与消息日志
	store, err := blob.NewLocalStore(conf.StaticSrcConfig.StaticFilePath, conf.StaticSrcConfig.PublicBaseURL)
	if err != nil {
		zap.L().Fatal("文件存储初始化失败", zap.Error(err))
	}
	journal := mq.NewJournal(conf.KafkaConfig)

	// 8. 初始化 Service 层 (依赖注入)
	svc := service.NewServices(service.Deps{
		Repos:     repos,
		Cache:     cache,
		Blob:      store,
		Journal:   journal,
		QueueSize: conf.WsConfig.SendQueueSize,
	})
	zap.L().Info("Service 层初始化成功")

	// 上次运行遗留的在线标志没有对应的存活连接，接受连接前清零
	if err := svc.Chat.ResetPresence(context.Background()); err != nil {
		zap.L().Fatal("重置在线状态失败", zap.Error(err))
	}

	// 9. 初始化 HTTP 服务器
	handlers := handler.NewHandlers(svc, conf.WsConfig)
	engine := https_server.Init(handlers, conf)
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler: engine,
	}

	go func() {
		zap.L().Info("服务启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 设置信号监听
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")

	// 先关闭所有 WebSocket 会话并等待断开流程写完离线状态，再停止 HTTP 服务和存储
	svc.Chat.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := handlers.Ws.Wait(ctx); err != nil {
		zap.L().Error("wait websocket clients", zap.Error(err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		zap.L().Error("server shutdown", zap.Error(err))
	}
	if redisCache != nil {
		if err := redisCache.Close(); err != nil {
			zap.L().Error("close redis", zap.Error(err))
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	zap.L().Info("服务器已关闭")
}
