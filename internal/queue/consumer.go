package queue

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"jobportal/internal/config"
)

const defaultMaxDeliveries = 5

type TaskHandler interface {
	Handle(ctx context.Context, task Task) error
}

// StreamClient is the part of *redis.Client the consumer drives.
type StreamClient interface {
	XGroupCreateMkStream(ctx context.Context, stream, group, start string) *redis.StatusCmd
	XReadGroup(ctx context.Context, a *redis.XReadGroupArgs) *redis.XStreamSliceCmd
	XAck(ctx context.Context, stream, group string, ids ...string) *redis.IntCmd
	XPendingExt(ctx context.Context, a *redis.XPendingExtArgs) *redis.XPendingExtCmd
	XClaim(ctx context.Context, a *redis.XClaimArgs) *redis.XMessageSliceCmd
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type Consumer struct {
	client        StreamClient
	stream        string
	deadStream    string
	group         string
	consumer      string
	claimInterval time.Duration
	maxDeliveries int64
	logger        zerolog.Logger
	handler       TaskHandler
}

func NewConsumer(client StreamClient, cfg config.QueueConfig, logger zerolog.Logger, handler TaskHandler) *Consumer {
	maxDeliveries := int64(cfg.MaxDeliveries)
	if maxDeliveries <= 0 {
		maxDeliveries = defaultMaxDeliveries
	}
	deadStream := cfg.DeadLetterStream
	if deadStream == "" {
		deadStream = cfg.Stream + ":dead"
	}
	return &Consumer{
		client:        client,
		stream:        cfg.Stream,
		deadStream:    deadStream,
		group:         cfg.Group,
		consumer:      cfg.Consumer,
		claimInterval: cfg.ClaimInterval,
		maxDeliveries: maxDeliveries,
		logger:        logger,
		handler:       handler,
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(c.claimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.read(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("stream read error")
				time.Sleep(2 * time.Second)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.claimStalled(ctx); err != nil {
				c.logger.Warn().Err(err).Msg("claim stalled messages failed")
			}
		default:
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			c.process(ctx, msg)
		}
	}
	return nil
}

// process handles one message and acks it. Undecodable messages are acked so
// they do not cycle through claim forever.
func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	task, err := DecodeTask(msg)
	if err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("drop malformed message")
		c.ack(ctx, msg.ID)
		return
	}

	if err := c.handler.Handle(ctx, task); err != nil {
		c.logger.Error().
			Err(err).
			Str("message_id", msg.ID).
			Str("task", string(task.Type)).
			Msg("handle message failed")
		return
	}
	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", id).Msg("ack failed")
	}
}

// claimStalled retries messages idle for longer than the claim interval. A message already
// delivered maxDeliveries times is moved to the dead-letter stream and acked instead.
func (c *Consumer) claimStalled(ctx context.Context) error {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: c.stream,
		Group:  c.group,
		Idle:   c.claimInterval,
		Start:  "-",
		End:    "+",
		Count:  100,
	}).Result()
	if err != nil {
		return err
	}

	for _, entry := range pending {
		if entry.Idle < c.claimInterval {
			continue
		}
		msgs, err := c.client.XClaim(ctx, &redis.XClaimArgs{
			Stream:   c.stream,
			Group:    c.group,
			Consumer: c.consumer,
			MinIdle:  c.claimInterval,
			Messages: []string{entry.ID},
		}).Result()
		if err != nil {
			c.logger.Error().Err(err).Str("message_id", entry.ID).Msg("claim error")
			continue
		}
		for _, msg := range msgs {
			if entry.RetryCount >= c.maxDeliveries {
				c.deadLetter(ctx, msg, entry.RetryCount)
				continue
			}
			c.process(ctx, msg)
		}
	}
	return nil
}

// deadLetter copies msg to the dead-letter stream and acks it. When the copy fails the
// message stays pending and is retried on the next claim.
func (c *Consumer) deadLetter(ctx context.Context, msg redis.XMessage, deliveries int64) {
	values := make(map[string]any, len(msg.Values)+2)
	for k, v := range msg.Values {
		values[k] = v
	}
	values["source_id"] = msg.ID
	values["deliveries"] = strconv.FormatInt(deliveries, 10)

	if err := c.client.XAdd(ctx, &redis.XAddArgs{Stream: c.deadStream, Values: values}).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", msg.ID).Msg("dead-letter failed")
		return
	}
	c.logger.Warn().
		Str("message_id", msg.ID).
		Int64("deliveries", deliveries).
		Str("dead_stream", c.deadStream).
		Msg("message dead-lettered")
	c.ack(ctx, msg.ID)
}
