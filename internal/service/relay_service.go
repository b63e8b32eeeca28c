package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"molt-core/internal/model"
	"molt-core/internal/service/mq"
	"molt-core/pkg/logger"
)

// RelayService 负责将本地消息表的消息搬运到 MQ
// 投递语义是 At-least-once: 状态更新失败时消息会重发, 消费端需做好幂等
type RelayService struct {
	db       *gorm.DB
	producer mq.Producer
	interval time.Duration
}

func NewRelayService(db *gorm.DB, producer mq.Producer) *RelayService {
	return &RelayService{
		db:       db,
		producer: producer,
		interval: 500 * time.Millisecond,
	}
}

func (s *RelayService) Start(ctx context.Context) {
	logger.Info("relay service started")
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("relay service stopped")
			return
		case <-ticker.C:
			s.processPendingEvents(ctx)
		}
	}
}

func (s *RelayService) processPendingEvents(ctx context.Context) {
	// 每次取 50 条, 避免一次捞出过多
	var events []model.OutboxEvent
	if err := s.db.WithContext(ctx).Where("status = ?", "PENDING").Limit(50).Find(&events).Error; err != nil {
		logger.Error("relay query failed", zap.Error(err))
		return
	}
	if len(events) == 0 {
		return
	}

	for _, ev := range events {
		if err := s.producer.Publish(ctx, ev.Topic, ev.Key, ev.Payload); err != nil {
			logger.Warn("relay publish failed",
				zap.Uint64("id", ev.ID),
				zap.String("topic", ev.Topic),
				zap.Error(err))
			continue
		}

		if err := s.db.WithContext(ctx).Model(&ev).Update("status", "SENT").Error; err != nil {
			logger.Error("relay status update failed", zap.Uint64("id", ev.ID), zap.Error(err))
		}
	}
}
