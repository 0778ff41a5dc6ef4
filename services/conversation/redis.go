// File: tempobook/services/conversation/redis.go
package conversation

import (
	"context"
	"encoding/json"
	"time"

	"tempobook/models"

	"github.com/go-redis/redis/v8"
)

const convKeyPrefix = "conv:"

// RedisStore keeps one Redis list per identity, trimmed to a maximum length
// on every append. The key TTL refreshes on activity so dormant
// conversations age out of Redis on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	maxLen int64
}

func NewRedisStore(client *redis.Client, ttl time.Duration, maxLen int64) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, maxLen: maxLen}
}

func (s *RedisStore) Append(ctx context.Context, identity string, turn models.Turn) error {
	key := convKeyPrefix + identity
	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -s.maxLen, -1)
	pipe.Expire(ctx, key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Recent(ctx context.Context, identity string, maxCount int) ([]models.Turn, error) {
	key := convKeyPrefix + identity
	entries, err := s.client.LRange(ctx, key, int64(-maxCount), -1).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	turns := make([]models.Turn, 0, len(entries))
	for _, entry := range entries {
		var turn models.Turn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (s *RedisStore) Clear(ctx context.Context, identity string) error {
	return s.client.Del(ctx, convKeyPrefix+identity).Err()
}
