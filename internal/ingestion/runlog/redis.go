package runlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"nepse-stock-scryper/internal/ingestion/dto"
	"nepse-stock-scryper/pkg/common"
)

// Redis keeps the run log in a capped Redis list so it survives restarts
// and is shared between replicas.
type Redis struct {
	client redis.Cmdable
	key    string
	size   int64
}

// NewRedis creates a Redis-backed run log capped at size entries.
func NewRedis(client redis.Cmdable, size int) *Redis {
	if size <= 0 {
		size = 100
	}
	return &Redis{client: client, key: common.RedisKeyScrapeRunLog, size: int64(size)}
}

// Append pushes the summary to the head of the list and trims the tail.
func (r *Redis) Append(ctx context.Context, summary dto.RunSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, payload)
		pipe.LTrim(ctx, r.key, 0, r.size-1)
		return nil
	})
	return err
}

// Recent reads up to limit summaries, newest first.
func (r *Redis) Recent(ctx context.Context, limit int) ([]dto.RunSummary, error) {
	if limit <= 0 || int64(limit) > r.size {
		limit = int(r.size)
	}
	values, err := r.client.LRange(ctx, r.key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	out := make([]dto.RunSummary, 0, len(values))
	for _, v := range values {
		var s dto.RunSummary
		if err := json.Unmarshal([]byte(v), &s); err != nil {
			return nil, fmt.Errorf("failed to decode run summary: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}
