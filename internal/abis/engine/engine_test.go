package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"mockabis/internal/abis/engine/mocks"
	"mockabis/internal/abis/models"
	"mockabis/internal/abis/store/enrollment"
	"mockabis/internal/abis/store/expectation"
	"mockabis/internal/biometric"
)

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks EnrollmentStore,ExpectationStore,BiometricFetcher

type EngineSuite struct {
	suite.Suite
	ctx          context.Context
	enrollments  *enrollment.InMemoryStore
	expectations *expectation.InMemoryStore
	fetcher      *mocks.MockBiometricFetcher
	engine       *Engine
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) SetupTest() {
	s.ctx = context.Background()
	s.enrollments = enrollment.NewInMemory()
	s.expectations = expectation.NewInMemory()
	s.fetcher = mocks.NewMockBiometricFetcher(gomock.NewController(s.T()))
	s.engine = New(s.enrollments, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithExpectations(s.expectations),
		WithFetcher(s.fetcher),
		WithIdentifyDelay(2*time.Second),
		WithFailureDelay(5*time.Second),
	)
}

func (s *EngineSuite) enroll(referenceID string, hashes ...string) {
	record := &models.EnrollmentRecord{ReferenceID: referenceID}
	for _, h := range hashes {
		record.Biometrics = append(record.Biometrics, models.BiometricSegment{Type: "Finger", Hash: h})
	}
	s.Require().NoError(s.enrollments.Insert(s.ctx, record))
}

func identifyReq(referenceID string, gallery ...string) *models.IdentifyRequest {
	req := &models.IdentifyRequest{RequestHeader: models.RequestHeader{RequestID: "r1", ReferenceID: referenceID}}
	if len(gallery) > 0 {
		req.Gallery = &models.Gallery{}
		for _, id := range gallery {
			req.Gallery.ReferenceIDs = append(req.Gallery.ReferenceIDs, models.GalleryEntry{ReferenceID: id})
		}
	}
	return req
}

func (s *EngineSuite) TestEnroll() {
	s.Run("without reference url stores a bare record", func() {
		req := &models.InsertRequest{RequestHeader: models.RequestHeader{RequestID: "r1", ReferenceID: "ref1"}}
		out, err := s.engine.Enroll(s.ctx, req)
		s.Require().NoError(err)
		s.False(out.Failed())
		s.Zero(out.Delay)

		got, err := s.enrollments.Get(s.ctx, "ref1")
		s.Require().NoError(err)
		s.Equal("r1", got.RequestID)
		s.Empty(got.Biometrics)
		s.False(got.InsertedAt.IsZero())
	})

	s.Run("fetches and stores biometrics", func() {
		s.fetcher.EXPECT().FetchSegments(gomock.Any(), "http://cbeff/ref2").
			Return([]models.BiometricSegment{{Type: "Iris", Hash: "h-iris"}}, nil)

		req := &models.InsertRequest{
			RequestHeader: models.RequestHeader{RequestID: "r2", ReferenceID: "ref2"},
			ReferenceURL:  "http://cbeff/ref2",
		}
		out, err := s.engine.Enroll(s.ctx, req)
		s.Require().NoError(err)
		s.False(out.Failed())

		got, err := s.enrollments.Get(s.ctx, "ref2")
		s.Require().NoError(err)
		s.Equal([]string{"h-iris"}, got.Hashes())
	})
}

func (s *EngineSuite) TestEnrollFetchFailures() {
	cases := []struct {
		err  error
		want models.FailureReason
	}{
		{err: fmt.Errorf("%w: timeout", biometric.ErrFetch), want: models.ReasonUnableToFetchBiometricDetails},
		{err: biometric.ErrNoBiometrics, want: models.ReasonBiometricNotFoundInCBEFF},
		{err: fmt.Errorf("%w: eof", biometric.ErrMalformed), want: models.ReasonUnableToFetchBiometricDetails},
	}
	for _, tc := range cases {
		s.Run(tc.want.Name(), func() {
			s.fetcher.EXPECT().FetchSegments(gomock.Any(), gomock.Any()).Return(nil, tc.err)
			req := &models.InsertRequest{
				RequestHeader: models.RequestHeader{RequestID: "r", ReferenceID: "refX"},
				ReferenceURL:  "http://cbeff/x",
			}
			out, err := s.engine.Enroll(s.ctx, req)
			s.Require().NoError(err)
			s.Require().True(out.Failed())
			s.Equal(tc.want, *out.Failure)
			s.Equal(5*time.Second, out.Delay)

			_, err = s.enrollments.Get(s.ctx, "refX")
			s.Error(err, "failed insert must not store")
		})
	}
}

func (s *EngineSuite) TestEnrollExpectationError() {
	s.Require().NoError(s.expectations.Save(s.ctx, models.Expectation{
		ID: "ref-bad", ActionToInterfere: models.ActionError, ErrorCode: "406", DelayInExecution: "3",
	}))
	req := &models.InsertRequest{RequestHeader: models.RequestHeader{RequestID: "r", ReferenceID: "ref-bad"}}

	out, err := s.engine.Enroll(s.ctx, req)
	s.Require().NoError(err)
	s.Require().True(out.Failed())
	s.Equal(models.ReasonPoorDataQuality, *out.Failure)
	s.Equal(3*time.Second, out.Delay)
}

func (s *EngineSuite) TestIdentifyUnknownSubject() {
	out, err := s.engine.Identify(s.ctx, identifyReq("ghost"))
	s.Require().NoError(err)
	s.Require().True(out.Failed())
	s.Equal(models.ReasonBiometricNotFoundInCBEFF, *out.Failure)
	s.Equal(5*time.Second, out.Delay)
}

func (s *EngineSuite) TestIdentifyMatchesSharedBiometrics() {
	s.enroll("subject", "h1", "h2")
	s.enroll("twin", "h2")
	s.enroll("stranger", "h9")
	s.enroll("other-twin", "h1")

	s.Run("full store scan excludes self", func() {
		out, err := s.engine.Identify(s.ctx, identifyReq("subject"))
		s.Require().NoError(err)
		s.False(out.Failed())
		s.True(out.Identify)
		s.ElementsMatch([]string{"twin", "other-twin"}, out.Candidates)
		s.Equal(2*time.Second, out.Delay)
	})

	s.Run("gallery restricts and tolerates duplicates", func() {
		out, err := s.engine.Identify(s.ctx, identifyReq("subject", "twin", "stranger", "twin", "subject", "missing"))
		s.Require().NoError(err)
		s.Equal([]string{"twin"}, out.Candidates)
	})

	s.Run("maxResults caps the list", func() {
		req := identifyReq("subject", "twin", "other-twin")
		req.Flags = &models.Flags{MaxResults: "1"}
		out, err := s.engine.Identify(s.ctx, req)
		s.Require().NoError(err)
		s.Equal([]string{"twin"}, out.Candidates)
	})

	s.Run("find duplicate off returns no candidates", func() {
		s.engine.UpdateSettings(models.Settings{FindDuplicate: false})
		defer s.engine.UpdateSettings(models.Settings{FindDuplicate: true})

		out, err := s.engine.Identify(s.ctx, identifyReq("subject"))
		s.Require().NoError(err)
		s.False(out.Failed())
		s.Empty(out.Candidates)
	})
}

func (s *EngineSuite) TestIdentifyExpectations() {
	s.enroll("subject", "hash-s")

	s.Run("duplicate expectation keyed by hash", func() {
		s.Require().NoError(s.expectations.Save(s.ctx, models.Expectation{
			ID:                "hash-s",
			ActionToInterfere: models.ActionDuplicate,
			DelayInExecution:  "7",
			Gallery: &models.Gallery{ReferenceIDs: []models.GalleryEntry{
				{ReferenceID: "dup-1"}, {ReferenceID: "subject"}, {ReferenceID: "dup-1"},
			}},
		}))
		defer func() { s.Require().NoError(s.expectations.Delete(s.ctx, "hash-s")) }()

		out, err := s.engine.Identify(s.ctx, identifyReq("subject"))
		s.Require().NoError(err)
		s.Equal([]string{"dup-1"}, out.Candidates)
		s.Equal(7*time.Second, out.Delay)
	})

	s.Run("error expectation keyed by reference id", func() {
		s.Require().NoError(s.expectations.Save(s.ctx, models.Expectation{
			ID: "subject", ActionToInterfere: models.ActionError, ErrorCode: "405",
		}))
		out, err := s.engine.Identify(s.ctx, identifyReq("subject"))
		s.Require().NoError(err)
		s.Require().True(out.Failed())
		s.Equal(models.ReasonMatchingOfBiometricDataFailed, *out.Failure)
	})
}

func (s *EngineSuite) TestStoreErrorsPropagate() {
	ctrl := gomock.NewController(s.T())
	store := mocks.NewMockEnrollmentStore(ctrl)
	eng := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	boom := errors.New("connection reset")

	store.EXPECT().Get(gomock.Any(), "ref1").Return(nil, boom)
	_, err := eng.Identify(s.ctx, identifyReq("ref1"))
	s.ErrorIs(err, boom)

	store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(boom)
	_, err = eng.Enroll(s.ctx, &models.InsertRequest{RequestHeader: models.RequestHeader{ReferenceID: "ref1"}})
	s.ErrorIs(err, boom)
}

func (s *EngineSuite) TestSettings() {
	s.True(s.engine.Settings().FindDuplicate)
	s.engine.UpdateSettings(models.Settings{FindDuplicate: false})
	s.False(s.engine.Settings().FindDuplicate)
}
