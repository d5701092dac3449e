// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml" // TOML 配置文件解析库
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName     string `toml:"appName"`     // 应用名称，用于日志标识等
	Host        string `toml:"host"`        // 服务器监听地址，如 "0.0.0.0"
	Port        int    `toml:"port"`        // 服务器监听端口，如 8000
	Mode        string `toml:"mode"`        // 运行模式："dev" 或 "release"
	TlsRedirect bool   `toml:"tlsRedirect"` // 是否将 HTTP 请求重定向到 HTTPS（由 Nginx 处理 SSL 时关闭）
}

// MysqlConfig 持久化存储连接配置
// Driver 为 "mysql" 时使用 MySQL，为 "sqlite" 时使用本地 SQLite 文件（开发/测试）
type MysqlConfig struct {
	Driver       string `toml:"driver"`       // 存储驱动："mysql" 或 "sqlite"
	Host         string `toml:"host"`         // MySQL 服务器地址
	Port         int    `toml:"port"`         // MySQL 端口，默认 3306
	User         string `toml:"user"`         // 数据库用户名
	Password     string `toml:"password"`     // 数据库密码
	DatabaseName string `toml:"databaseName"` // 数据库名称
	SqlitePath   string `toml:"sqlitePath"`   // SQLite 文件路径
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`  // 是否启用历史消息缓存
	Host     string `toml:"host"`     // Redis 服务器地址
	Port     int    `toml:"port"`     // Redis 端口，默认 6379
	Password string `toml:"password"` // Redis 密码，无密码留空
	Db       int    `toml:"db"`       // Redis 数据库编号，默认 0
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig Kafka 消息日志配置
// MessageMode 为 "kafka" 时，已持久化的消息和已读回执会异步写入 ChatTopic
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"` // 消息模式："channel" 或 "kafka"
	HostPort    string        `toml:"hostPort"`    // Kafka 服务器地址，如 "localhost:9092"
	ChatTopic   string        `toml:"chatTopic"`   // 聊天消息主题
	Partition   int           `toml:"partition"`   // 分区数
	Timeout     time.Duration `toml:"timeout"`     // 超时时间（秒）
}

// StaticSrcConfig 静态资源路径配置
type StaticSrcConfig struct {
	StaticFilePath string `toml:"staticFilePath"` // 上传文件存储路径
	PublicBaseURL  string `toml:"publicBaseURL"`  // 生成文件 URL 时使用的前缀，如 "http://127.0.0.1:8000"
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023
}

// WsConfig WebSocket 连接配置
type WsConfig struct {
	ReadBufferSize  int   `toml:"readBufferSize"`  // 读缓冲区大小
	WriteBufferSize int   `toml:"writeBufferSize"` // 写缓冲区大小
	SendQueueSize   int   `toml:"sendQueueSize"`   // 每个连接的下行队列长度，写满视为慢连接并断开
	MaxMessageSize  int64 `toml:"maxMessageSize"`  // 单条上行消息最大字节数（含 base64 文件）
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig      `toml:"mainConfig"`      // 主配置
	MysqlConfig     `toml:"mysqlConfig"`     // 存储配置
	RedisConfig     `toml:"redisConfig"`     // Redis 配置
	LogConfig       `toml:"logConfig"`       // 日志配置
	KafkaConfig     `toml:"kafkaConfig"`     // Kafka 配置
	StaticSrcConfig `toml:"staticSrcConfig"` // 静态资源配置
	SnowflakeConfig `toml:"snowflakeConfig"` // 雪花算法配置
	WsConfig        `toml:"wsConfig"`        // WebSocket 配置
}

// config 全局配置单例，延迟加载
var config *Config

// defaultConfig 配置文件缺失字段时使用的默认值
func defaultConfig() *Config {
	return &Config{
		MainConfig:      MainConfig{AppName: "chat_relay_server", Host: "0.0.0.0", Port: 8000, Mode: "dev"},
		MysqlConfig:     MysqlConfig{Driver: "sqlite", SqlitePath: "chat_relay.db", Port: 3306},
		RedisConfig:     RedisConfig{Host: "127.0.0.1", Port: 6379},
		LogConfig:       LogConfig{LogPath: "./logs", Level: "info"},
		KafkaConfig:     KafkaConfig{MessageMode: "channel", ChatTopic: "chat_message", Partition: 1, Timeout: 1},
		StaticSrcConfig: StaticSrcConfig{StaticFilePath: "./static/files", PublicBaseURL: "http://127.0.0.1:8000"},
		SnowflakeConfig: SnowflakeConfig{MachineID: 1},
		WsConfig:        WsConfig{ReadBufferSize: 2048, WriteBufferSize: 2048, SendQueueSize: 100, MaxMessageSize: 8 << 20},
	}
}

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	// 候选配置文件路径（优先加载本地配置）
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",       // 从子目录运行时的路径
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件，找不到文件时使用默认值
func GetConfig() *Config {
	if config == nil {
		config = defaultConfig()
		_ = LoadConfig()
	}
	return config
}
