package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/pkg/common"
)

// OutcomePublisher announces finished ingestion runs.
type OutcomePublisher interface {
	Publish(ctx context.Context, summary dto.RunSummary) error
}

// NewRedisOutcomePublisher publishes run summaries on the ingestion.completed stream.
func NewRedisOutcomePublisher(client redis.Cmdable, maxLen int64) OutcomePublisher {
	return &redisOutcomePublisher{client: client, maxLen: maxLen}
}

type redisOutcomePublisher struct {
	client redis.Cmdable
	maxLen int64
}

func (p *redisOutcomePublisher) Publish(ctx context.Context, summary dto.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamIngestionCompleted,
		Values: map[string]interface{}{"payload": payload},
		MaxLen: p.maxLen,
		Approx: true,
	}).Err()
}

// NewNoopOutcomePublisher is used when Redis is disabled.
func NewNoopOutcomePublisher() OutcomePublisher {
	return noopOutcomePublisher{}
}

type noopOutcomePublisher struct{}

func (noopOutcomePublisher) Publish(context.Context, dto.RunSummary) error { return nil }
