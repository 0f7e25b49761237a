package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"learner_analytics_backend/pkg/logger"
)

// 账本变更通知：下游（仪表盘、消息推送）订阅后可按需刷新派生数据
const (
	EventChannel         = "learner.analytics.events"
	EventSampleAppended  = "sample.appended"
	EventSessionRecorded = "session.recorded"
)

// Event 发布到 redis 频道的变更通知载荷
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	UserID     uint      `json:"userId"`
	CategoryID *string   `json:"categoryId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type EventPublisher struct {
	Client *redis.Client
}

func NewEventPublisher(rdb *redis.Client) *EventPublisher {
	return &EventPublisher{Client: rdb}
}

// Publish 尽力而为：通知失败只记日志，不影响账本写入的主流程。
func (p *EventPublisher) Publish(ctx context.Context, eventType string, userID uint, categoryID *string) {
	event := Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		UserID:     userID,
		CategoryID: categoryID,
		OccurredAt: time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Log.Error("marshal event failed", zap.String("type", eventType), zap.Error(err))
		return
	}

	if err := p.Client.Publish(ctx, EventChannel, payload).Err(); err != nil {
		logger.Log.Warn("publish event failed",
			zap.String("type", eventType),
			zap.Uint("userId", userID),
			zap.Error(err))
	}
}
