package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/mock/gomock"

	"mockabis/internal/abis/listener/mocks"
	"mockabis/internal/abis/models"
	"mockabis/internal/abis/response"
	"mockabis/pkg/requestcontext"
)

//go:generate mockgen -source=listener.go -destination=mocks/mocks.go -package=mocks Dispatcher,Scheduler
type ListenerSuite struct {
	suite.Suite
	dispatcher *mocks.MockDispatcher
	scheduler  *mocks.MockScheduler
	listener   *Listener
}

func TestListenerSuite(t *testing.T) {
	suite.Run(t, new(ListenerSuite))
}

func (s *ListenerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.dispatcher = mocks.NewMockDispatcher(ctrl)
	s.scheduler = mocks.NewMockScheduler(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.listener = New(&fakeConsumer{}, s.dispatcher, s.scheduler, logger)
}

func record(payload string) *kgo.Record {
	return &kgo.Record{Topic: "abis-requests", Value: []byte(payload)}
}

func (s *ListenerSuite) TestRoutesByIDLiteral() {
	s.dispatcher.EXPECT().Insert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req *models.InsertRequest) (models.Response, error) {
			s.Equal(requestcontext.SourceQueue, requestcontext.OperationSource(ctx))
			s.Equal("q-1", requestcontext.RequestID(ctx))
			s.Equal("http://cbeff/1", req.ReferenceURL)
			return models.Response{}, nil
		})
	s.dispatcher.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(models.Response{}, nil)
	s.dispatcher.EXPECT().Identify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.IdentifyRequest) (models.Response, error) {
			s.Equal([]string{"a", "b"}, req.Gallery.IDs())
			return models.Response{}, nil
		})

	ctx := context.Background()
	s.NoError(s.listener.Handle(ctx, record(`{"id":"mosip.abis.insert","requestId":"q-1","referenceId":"r","referenceURL":"http://cbeff/1"}`)))
	s.NoError(s.listener.Handle(ctx, record(`{"id":"MOSIP.ABIS.DELETE","requestId":"q-2","referenceId":"r"}`)))
	s.NoError(s.listener.Handle(ctx, record(`{"id":"mosip.abis.identify","requestId":"q-3","referenceId":"r","gallery":{"referenceIds":[{"referenceId":"a"},{"referenceId":"b"}]}}`)))
}

func (s *ListenerSuite) TestUnknownIDAnsweredWithInvalidID() {
	s.scheduler.EXPECT().Schedule(gomock.Any()).
		DoAndReturn(func(d models.Delivery) string {
			s.Equal(models.ReturnFailure, d.Response.ReturnValue)
			s.Require().NotNil(d.Response.FailureReason)
			s.Equal(models.ReasonInvalidID, *d.Response.FailureReason)
			s.Equal("q-9", d.Response.RequestID)
			s.Zero(d.Delay)
			return "task"
		})

	s.NoError(s.listener.Handle(context.Background(), record(`{"id":"mosip.abis.enroll","requestId":"q-9"}`)))
}

func (s *ListenerSuite) TestInternalErrorPublishedImmediately() {
	s.dispatcher.EXPECT().Identify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *models.IdentifyRequest) (models.Response, error) {
			return response.InternalError(req.RequestHeader), errors.New("store down")
		})
	s.scheduler.EXPECT().Schedule(gomock.Any()).
		DoAndReturn(func(d models.Delivery) string {
			s.Equal(models.MessageIdentify, d.MessageType)
			s.Require().NotNil(d.Response.FailureReason)
			s.Equal(models.ReasonInternalErrorUnknown, *d.Response.FailureReason)
			s.Zero(d.Delay)
			return "task"
		})

	s.NoError(s.listener.Handle(context.Background(), record(`{"id":"mosip.abis.identify","requestId":"q-4","referenceId":"r"}`)))
}

func (s *ListenerSuite) TestUndecodablePayloadIsSkipped() {
	err := s.listener.Handle(context.Background(), record(`not json`))
	s.ErrorIs(err, ErrUndecodable)
}

func (s *ListenerSuite) TestRunCommitsHandledBatches() {
	consumer := &fakeConsumer{batches: [][]*kgo.Record{
		{
			record(`{"id":"mosip.abis.delete","requestId":"q-5","referenceId":"r"}`),
			record(`garbage`),
		},
	}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := New(consumer, s.dispatcher, s.scheduler, logger)

	handled := make(chan struct{})
	s.dispatcher.EXPECT().Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *models.DeleteRequest) (models.Response, error) {
			close(handled)
			return models.Response{}, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	select {
	case <-handled:
	case <-time.After(2 * time.Second):
		s.FailNow("record was not handled")
	}
	s.Eventually(func() bool { return consumer.committedCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.FailNow("listener did not stop")
	}
}

type fakeConsumer struct {
	mu        sync.Mutex
	batches   [][]*kgo.Record
	committed []*kgo.Record
}

func (f *fakeConsumer) PollFetches(ctx context.Context) kgo.Fetches {
	f.mu.Lock()
	if len(f.batches) > 0 {
		batch := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return kgo.Fetches{{Topics: []kgo.FetchTopic{{
			Topic:      "abis-requests",
			Partitions: []kgo.FetchPartition{{Records: batch}},
		}}}}
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kgo.Fetches{}
}

func (f *fakeConsumer) CommitRecords(_ context.Context, rs ...*kgo.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, rs...)
	return nil
}

func (f *fakeConsumer) committedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}
