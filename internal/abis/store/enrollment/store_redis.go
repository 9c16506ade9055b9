package enrollment

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

const (
	enrollmentKeyPrefix = "abis:enrollment:"
	enrollmentIndexKey  = "abis:enrollments"
)

// RedisStore keeps each record as a JSON string plus a set indexing all ids.
// Record and index are updated in one MULTI/EXEC so a scan never sees an id
// without its record.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Insert(ctx context.Context, record *models.EnrollmentRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal enrollment: %w", err)
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, enrollmentKeyPrefix+record.ReferenceID, payload, 0)
		pipe.SAdd(ctx, enrollmentIndexKey, record.ReferenceID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, referenceID string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, enrollmentKeyPrefix+referenceID)
		pipe.SRem(ctx, enrollmentIndexKey, referenceID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, referenceID string) (*models.EnrollmentRecord, error) {
	raw, err := s.client.Get(ctx, enrollmentKeyPrefix+referenceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("enrollment %s: %w", referenceID, sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	var record models.EnrollmentRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decode enrollment %s: %w", referenceID, err)
	}
	return &record, nil
}

func (s *RedisStore) GetMany(ctx context.Context, referenceIDs []string) ([]*models.EnrollmentRecord, error) {
	if len(referenceIDs) == 0 {
		return nil, nil
	}
	keys := make([]string, len(referenceIDs))
	for i, id := range referenceIDs {
		keys[i] = enrollmentKeyPrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get enrollments: %w", err)
	}
	out := make([]*models.EnrollmentRecord, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		var record models.EnrollmentRecord
		if err := json.Unmarshal([]byte(str), &record); err != nil {
			return nil, fmt.Errorf("decode enrollment %s: %w", referenceIDs[i], err)
		}
		out = append(out, &record)
	}
	return out, nil
}

func (s *RedisStore) ReferenceIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, enrollmentIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}
