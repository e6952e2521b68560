// Package services provides external service integrations such as event publishing
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

// EventPublisher announces domain events to other services
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// RedisEventPublisher publishes JSON events on a Redis Pub/Sub channel
type RedisEventPublisher struct {
	rc      *redis.Client
	channel string
}

// NewRedisEventPublisher creates a publisher for channel
func NewRedisEventPublisher(rc *redis.Client, channel string) EventPublisher {
	return &RedisEventPublisher{rc: rc, channel: channel}
}

// Publish marshals event and publishes it. Having no subscribers is not an error.
func (p *RedisEventPublisher) Publish(ctx context.Context, event any) error {
	if p.rc == nil {
		return fmt.Errorf("redis client not configured")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rc.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return nil
}

// LogEventPublisher writes events to the log instead of a broker
type LogEventPublisher struct{}

// NewLogEventPublisher creates a publisher used when Redis is not available
func NewLogEventPublisher() EventPublisher {
	return &LogEventPublisher{}
}

func (p *LogEventPublisher) Publish(ctx context.Context, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	log.Printf(`{"level":"info","event":"domain_event","payload":%s}`, payload)
	return nil
}
