//go:build integration

package enrollment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"mockabis/internal/abis/models"
	"mockabis/internal/abis/store/enrollment"
	"mockabis/pkg/platform/sentinel"
	"mockabis/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *enrollment.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = enrollment.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "enrollments"))
}

func (s *PostgresStoreSuite) TestUpsertAndLookup() {
	ctx := context.Background()
	first := &models.EnrollmentRecord{ReferenceID: "ref1", RequestID: "r1", InsertedAt: time.Now().UTC()}
	second := &models.EnrollmentRecord{
		ReferenceID: "ref1",
		RequestID:   "r2",
		Biometrics:  []models.BiometricSegment{{Type: "Iris", Hash: "abc"}},
		InsertedAt:  time.Now().UTC(),
	}
	s.Require().NoError(s.store.Insert(ctx, first))
	s.Require().NoError(s.store.Insert(ctx, second))

	got, err := s.store.Get(ctx, "ref1")
	s.Require().NoError(err)
	s.Equal("r2", got.RequestID)
	s.Equal([]string{"abc"}, got.Hashes())
}

func (s *PostgresStoreSuite) TestGetManyAndList() {
	ctx := context.Background()
	for _, id := range []string{"b", "a", "c"} {
		s.Require().NoError(s.store.Insert(ctx, &models.EnrollmentRecord{ReferenceID: id, RequestID: "r-" + id}))
	}

	got, err := s.store.GetMany(ctx, []string{"a", "c", "zz"})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("a", got[0].ReferenceID)
	s.Equal("c", got[1].ReferenceID)

	ids, err := s.store.ReferenceIDs(ctx)
	s.Require().NoError(err)
	s.Equal([]string{"a", "b", "c"}, ids)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	s.NoError(s.store.Delete(ctx, "never-inserted"))

	s.Require().NoError(s.store.Insert(ctx, &models.EnrollmentRecord{ReferenceID: "gone"}))
	s.Require().NoError(s.store.Delete(ctx, "gone"))
	_, err := s.store.Get(ctx, "gone")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdatedAtFollowsClock() {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	store := enrollment.NewPostgres(s.postgres.DB, enrollment.WithPostgresClock(func() time.Time { return fixed }))

	s.Require().NoError(store.Insert(ctx, &models.EnrollmentRecord{ReferenceID: "ref-clock", RequestID: "r1"}))

	var updatedAt time.Time
	err := s.postgres.DB.QueryRowContext(ctx,
		`SELECT updated_at FROM enrollments WHERE reference_id = $1`, "ref-clock").Scan(&updatedAt)
	s.Require().NoError(err)
	s.True(fixed.Equal(updatedAt), "updated_at %s", updatedAt)
}
