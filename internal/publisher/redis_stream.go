package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream names for pipeline run events. Downstream consumers (the websocket
// broadcaster included) subscribe to these.
const (
	StreamIngest  = "pipeline.ingest.basketball_nba"
	StreamProcess = "pipeline.process.basketball_nba"
	StreamStats   = "pipeline.stats.basketball_nba"
)

// RedisPublisher publishes pipeline run results to Redis streams
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher from an existing Redis client
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{
		client: client,
	}
}

// PublishIngestResult announces a completed ingestion run
func (rp *RedisPublisher) PublishIngestResult(ctx context.Context, result interface{}) error {
	return rp.publish(ctx, StreamIngest, result)
}

// PublishProcessResult announces a completed normalization run
func (rp *RedisPublisher) PublishProcessResult(ctx context.Context, result interface{}) error {
	return rp.publish(ctx, StreamProcess, result)
}

// PublishStatsResult announces a completed stats rebuild
func (rp *RedisPublisher) PublishStatsResult(ctx context.Context, result interface{}) error {
	return rp.publish(ctx, StreamStats, result)
}

func (rp *RedisPublisher) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: 1000,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
