package publisher

import (
	"context"
	"time"

	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Stream names
const (
	PredictionsStream = "predictions.basketball_nba"
	ImportsStream     = "imports.basketball_nba"
)

// Publisher announces feed and import events
type Publisher interface {
	PublishPredictionFeed(ctx context.Context, feed interface{}) error
	PublishImport(ctx context.Context, event interface{}) error
}

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	maxLen int64
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		maxLen: 1000,
	}
}

// PublishPredictionFeed publishes a reloaded prediction feed
func (rsp *RedisStreamPublisher) PublishPredictionFeed(ctx context.Context, feed interface{}) error {
	return rsp.publish(ctx, PredictionsStream, feed)
}

// PublishImport publishes a finished game import
func (rsp *RedisStreamPublisher) PublishImport(ctx context.Context, event interface{}) error {
	return rsp.publish(ctx, ImportsStream, event)
}

func (rsp *RedisStreamPublisher) publish(ctx context.Context, stream string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: rsp.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// Nop drops every event. Used when Redis is not configured.
type Nop struct{}

func (Nop) PublishPredictionFeed(context.Context, interface{}) error { return nil }
func (Nop) PublishImport(context.Context, interface{}) error { return nil }
