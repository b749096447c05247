package sink

import (
	"context"
	"encoding/json"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"gfdeals/api_deals/internal/deals"
)

// RedisSink stores the collection as a hash of content hash to deal JSON.
type RedisSink struct {
	client goredis.UniversalClient
	key    string
}

func NewRedisSink(client goredis.UniversalClient, key string) *RedisSink {
	return &RedisSink{client: client, key: key}
}

// Load returns the stored deals ranked the same way the merger ranks them.
func (s *RedisSink) Load(ctx context.Context) ([]deals.Deal, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("hgetall %s: %w", s.key, err)
	}
	out := make([]deals.Deal, 0, len(fields))
	for hash, raw := range fields {
		var d deals.Deal
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, fmt.Errorf("decode deal %s: %w", hash, err)
		}
		out = append(out, d)
	}
	return deals.Merge(out, nil), nil
}

// Persist swaps the hash atomically inside MULTI/EXEC.
func (s *RedisSink) Persist(ctx context.Context, ds []deals.Deal) (Result, error) {
	keyed := byContentHash(ds)
	values := make([]any, 0, 2*len(keyed))
	for _, kd := range keyed {
		payload, err := json.Marshal(kd.deal)
		if err != nil {
			return Result{}, fmt.Errorf("encode deal %s: %w", kd.hash, err)
		}
		values = append(values, kd.hash, string(payload))
	}

	var existing *goredis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		existing = pipe.HLen(ctx, s.key)
		pipe.Del(ctx, s.key)
		if len(values) > 0 {
			pipe.HSet(ctx, s.key, values...)
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("replace %s: %w", s.key, err)
	}
	return Result{Deleted: int(existing.Val()), Inserted: len(keyed)}, nil
}
