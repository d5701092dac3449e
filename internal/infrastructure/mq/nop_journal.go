package mq

import (
	"context"

	"chat_relay_server/internal/config"
	"chat_relay_server/internal/model"

	"go.uber.org/zap"
)

// NopJournal messageMode 为 "channel" 时使用，不落任何日志
type NopJournal struct{}

func (NopJournal) PublishMessage(context.Context, *model.Message) {}

func (NopJournal) PublishRead(context.Context, int64, uint) {}

func (NopJournal) Close() error { return nil }

// NewJournal 根据 messageMode 选择实现
func NewJournal(cfg config.KafkaConfig) Journal {
	if cfg.MessageMode != "kafka" {
		return NopJournal{}
	}
	if err := CreateTopic(cfg); err != nil {
		zap.L().Warn("kafka unreachable at startup, journal writes will retry in background", zap.Error(err))
	}
	zap.L().Info("kafka message journal enabled", zap.String("topic", cfg.ChatTopic))
	return NewKafkaJournal(cfg)
}
