//go:build integration

package enrollment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"mockabis/internal/abis/models"
	"mockabis/internal/abis/store/enrollment"
	"mockabis/pkg/testutil/containers"
)

type RedisStoreIntegrationSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *enrollment.RedisStore
}

func TestRedisStoreIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreIntegrationSuite))
}

func (s *RedisStoreIntegrationSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = enrollment.NewRedis(s.redis.Client.Client)
}

func (s *RedisStoreIntegrationSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreIntegrationSuite) TestInsertListDelete() {
	ctx := context.Background()
	s.Require().NoError(s.store.Insert(ctx, &models.EnrollmentRecord{ReferenceID: "ref1", RequestID: "r1"}))

	ids, err := s.store.ReferenceIDs(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"ref1"}, ids)

	s.Require().NoError(s.store.Delete(ctx, "ref1"))
	ids, err = s.store.ReferenceIDs(ctx)
	s.Require().NoError(err)
	s.Empty(ids)
}
