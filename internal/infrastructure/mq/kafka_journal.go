package mq

import (
	"context"
	"encoding/json"
	"time"

	"chat_relay_server/internal/config"
	"chat_relay_server/internal/model"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// KafkaJournal 基于 kafka-go Writer 的消息日志
type KafkaJournal struct {
	writer *kafka.Writer
}

// NewKafkaJournal 创建 Kafka 消息日志
// Writer 使用异步模式，写入结果在 Completion 回调中记录
func NewKafkaJournal(cfg config.KafkaConfig) *KafkaJournal {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.HostPort),
		Topic:                  cfg.ChatTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           cfg.Timeout * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: false,
		Async:                  true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				zap.L().Error("kafka journal write failed", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	return &KafkaJournal{writer: writer}
}

// CreateTopic 创建 topic（已存在时 broker 返回错误，仅记录日志）
func CreateTopic(cfg config.KafkaConfig) error {
	conn, err := kafka.Dial("tcp", cfg.HostPort)
	if err != nil {
		return err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             cfg.ChatTopic,
		NumPartitions:     cfg.Partition,
		ReplicationFactor: 1,
	})
	if err != nil {
		zap.L().Warn("kafka create topic", zap.String("topic", cfg.ChatTopic), zap.Error(err))
	}
	return nil
}

// PublishMessage 实现 Journal
func (k *KafkaJournal) PublishMessage(ctx context.Context, msg *model.Message) {
	k.write(ctx, NewMessageEntry(msg))
}

// PublishRead 实现 Journal
func (k *KafkaJournal) PublishRead(ctx context.Context, messageId int64, readerId uint) {
	k.write(ctx, NewReadEntry(messageId, readerId))
}

func (k *KafkaJournal) write(ctx context.Context, entry Entry) {
	value, err := json.Marshal(entry)
	if err != nil {
		zap.L().Error("kafka journal marshal", zap.String("kind", entry.Kind), zap.Error(err))
		return
	}
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: entry.Key(), Value: value}); err != nil {
		zap.L().Error("kafka journal enqueue", zap.String("kind", entry.Kind), zap.Error(err))
	}
}

// Close 实现 Journal
func (k *KafkaJournal) Close() error {
	return k.writer.Close()
}

var _ Journal = (*KafkaJournal)(nil)
