package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client, stream string) *Publisher {
	return &Publisher{client: client, stream: stream}
}

// Publish appends task to the stream. A nil publisher or client drops the task.
func (p *Publisher) Publish(ctx context.Context, task Task) error {
	if p == nil || p.client == nil {
		return nil
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: task.Values(),
	}).Err()
}
