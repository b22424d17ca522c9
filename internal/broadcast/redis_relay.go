package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
)

// RedisRelay shares summaries between replicas. Publish goes through a
// Redis channel; Run forwards everything on that channel into the local hub,
// including this replica's own messages. Once Run has returned, or when
// Redis rejects a publish, messages are delivered to the local hub directly.
type RedisRelay struct {
	client  *redis.Client
	channel string
	hub     *Hub
	logger  *slog.Logger

	forwarding atomic.Bool
}

// NewRedisRelay connects to addr and verifies connectivity
func NewRedisRelay(ctx context.Context, addr, channel string, hub *Hub) (*RedisRelay, error) {
	if addr == "" {
		return nil, fmt.Errorf("redis address missing")
	}
	if channel == "" {
		channel = "chaindash:summary"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	r := newRelay(client, channel, hub)
	r.logger.Info("redis relay connected", "addr", addr, "channel", channel)
	return r, nil
}

func newRelay(client *redis.Client, channel string, hub *Hub) *RedisRelay {
	return &RedisRelay{
		client:  client,
		channel: channel,
		hub:     hub,
		logger:  slog.Default().With("component", "redis_relay"),
	}
}

// Publish implements Publisher
func (r *RedisRelay) Publish(ctx context.Context, msg Message) error {
	data, err := encodeMessage(msg)
	if err != nil {
		return err
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		n := r.hub.Broadcast(msg)
		r.logger.Warn("redis publish failed, delivered locally only",
			"channel", r.channel, "subscribers", n, "error", err)
		return nil
	}
	if !r.forwarding.Load() {
		n := r.hub.Broadcast(msg)
		r.logger.Warn("relay not forwarding, delivered locally", "channel", r.channel, "subscribers", n)
		return nil
	}
	r.logger.Debug("summary published", "channel", r.channel)
	return nil
}

// Run forwards channel messages into the hub until ctx is cancelled
func (r *RedisRelay) Run(ctx context.Context) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe failed on %s: %w", r.channel, err)
	}

	r.forwarding.Store(true)
	defer r.forwarding.Store(false)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			msg, err := decodeMessage(m.Payload)
			if err != nil {
				r.logger.Warn("dropping malformed relay message", "error", err)
				continue
			}
			r.hub.Broadcast(msg)
		}
	}
}

// Close closes the Redis client connection
func (r *RedisRelay) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("failed to close redis client: %w", err)
	}
	r.logger.Info("redis relay closed")
	return nil
}

func encodeMessage(msg Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}
	return string(data), nil
}

func decodeMessage(payload string) (Message, error) {
	var msg Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("message without type")
	}
	return msg, nil
}
