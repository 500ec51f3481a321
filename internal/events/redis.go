package events

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/rueidis"
)

// envelope Redis 列表中的消息格式
type envelope struct {
	Name        string    `json:"name"`
	Payload     Event     `json:"payload"`
	PublishedAt time.Time `json:"published_at"`
}

// RedisPublisher 把事件 RPUSH 到 <prefix>:<event name> 列表，由外部消费者 LPOP
type RedisPublisher struct {
	client rueidis.Client
	prefix string
	now    func() time.Time
}

func NewRedisPublisher(client rueidis.Client, prefix string) *RedisPublisher {
	return &RedisPublisher{client: client, prefix: prefix, now: time.Now}
}

// Key 返回事件所在的列表名
func (p *RedisPublisher) Key(name string) string {
	return p.prefix + ":" + name
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	data, err := sonic.Marshal(envelope{Name: e.Name(), Payload: e, PublishedAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", e.Name(), err)
	}

	cmd := p.client.B().Rpush().Key(p.Key(e.Name())).Element(string(data)).Build()
	if err := p.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to push event %s: %w", e.Name(), err)
	}
	return nil
}
