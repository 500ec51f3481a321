package events

import (
	"context"

	"go.uber.org/zap"
)

// LogPublisher 把事件写进日志，开发环境和没有 Redis 时使用
type LogPublisher struct {
	log *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info("Event published", zap.String("event", e.Name()), zap.Any("payload", e))
	return nil
}
