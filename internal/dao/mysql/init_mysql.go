// Package mysql 负责建立持久化存储连接并自动迁移表结构
// 生产环境使用 MySQL，开发与测试可切换为 SQLite 文件
package mysql

import (
	"fmt"

	"chat_relay_server/internal/config" // 配置管理
	"chat_relay_server/internal/model"  // 数据模型

	mysqldriver "gorm.io/driver/mysql" // GORM MySQL 驱动
	"gorm.io/driver/sqlite"            // GORM SQLite 驱动 (mattn/go-sqlite3)
	"gorm.io/gorm"                     // GORM ORM 框架
	"gorm.io/gorm/logger"
)

// Open 根据配置打开数据库连接并执行 AutoMigrate
// 执行步骤：
//  1. 根据 Driver 选择方言并构建 DSN
//  2. 使用 GORM 建立连接
//  3. AutoMigrate 创建/更新 users、messages、uploads 表
func Open(cfg config.MysqlConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "sqlite":
		// busy_timeout 避免并发写时立即返回 SQLITE_BUSY
		dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=1", cfg.SqlitePath)
		db, err = gorm.Open(sqlite.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SqlitePath, err)
		}
		// SQLite 单写者，所有语句串行到一个连接上
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	case "", "mysql":
		// 格式：user:password@tcp(host:port)/database?params
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DatabaseName,
		)
		db, err = gorm.Open(mysqldriver.Open(dsn), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("open mysql %s:%d: %w", cfg.Host, cfg.Port, err)
		}
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}

	// 不会删除已有字段或数据
	if err := db.AutoMigrate(
		&model.User{},    // 用户表
		&model.Message{}, // 消息表
		&model.Upload{},  // 上传记录表
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	return db, nil
}
