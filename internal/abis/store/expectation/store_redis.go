package expectation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"mockabis/internal/abis/models"
	"mockabis/pkg/platform/sentinel"
)

// Expectations live in a single hash so DeleteAll is one DEL.
const expectationHashKey = "abis:expectations"

type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, exp models.Expectation) error {
	payload, err := json.Marshal(exp)
	if err != nil {
		return fmt.Errorf("marshal expectation: %w", err)
	}
	if err := s.client.HSet(ctx, expectationHashKey, exp.ID, payload).Err(); err != nil {
		return fmt.Errorf("save expectation: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Expectation, error) {
	raw, err := s.client.HGet(ctx, expectationHashKey, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("expectation %s: %w", id, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get expectation: %w", err)
	}
	var exp models.Expectation
	if err := json.Unmarshal(raw, &exp); err != nil {
		return nil, fmt.Errorf("decode expectation %s: %w", id, err)
	}
	return &exp, nil
}

func (s *RedisStore) List(ctx context.Context) ([]models.Expectation, error) {
	all, err := s.client.HGetAll(ctx, expectationHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list expectations: %w", err)
	}
	out := make([]models.Expectation, 0, len(all))
	for id, raw := range all {
		var exp models.Expectation
		if err := json.Unmarshal([]byte(raw), &exp); err != nil {
			return nil, fmt.Errorf("decode expectation %s: %w", id, err)
		}
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.HDel(ctx, expectationHashKey, id).Err(); err != nil {
		return fmt.Errorf("delete expectation: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteAll(ctx context.Context) error {
	if err := s.client.Del(ctx, expectationHashKey).Err(); err != nil {
		return fmt.Errorf("delete expectations: %w", err)
	}
	return nil
}
