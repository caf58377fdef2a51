// Package events appends record-store change notifications to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	TypeImportCompleted   = "import.completed"
	TypeAdmissionsDeleted = "admissions.deleted"
	TypeAdmissionsCleared = "admissions.cleared"
)

// Event 记录变更事件
type Event struct {
	Type       string    `json:"type"`
	Count      int       `json:"count"`
	Skipped    int       `json:"skipped,omitempty"`
	Unresolved int       `json:"unresolved,omitempty"`
	Source     string    `json:"source,omitempty"` // uploaded file name
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events. Publishing is best effort for callers: a failed
// publish never undoes the change it describes.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// StreamPublisher 发布事件到 Redis Streams
type StreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
	logger *zap.Logger
}

func NewStreamPublisher(client *redis.Client, stream string, logger *zap.Logger) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, maxLen: 10000, logger: logger}
}

func (p *StreamPublisher) Publish(ctx context.Context, ev Event) error {
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// 使用 XADD 命令添加消息（近似裁剪，保留最近 maxLen 条）
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"type":      ev.Type,
			"data":      string(data),
			"timestamp": ev.OccurredAt.Unix(),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", p.stream, err)
	}
	p.logger.Debug("Event published",
		zap.String("stream", p.stream),
		zap.String("id", id),
		zap.String("type", ev.Type),
	)
	return nil
}
