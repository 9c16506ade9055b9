package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockabis/internal/abis/engine"
	"mockabis/internal/abis/models"
	"mockabis/internal/abis/service"
	"mockabis/internal/abis/store/enrollment"
	"mockabis/internal/delivery"
	"mockabis/pkg/testutil"
)

type harness struct {
	dispatcher *service.Dispatcher
	store      *enrollment.InMemoryStore
	outbound   chan models.Delivery
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := enrollment.NewInMemory()
	outbound := make(chan models.Delivery, 8)

	sched := delivery.NewScheduler(delivery.PublisherFunc(func(_ context.Context, d models.Delivery) error {
		outbound <- d
		return nil
	}), logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = sched.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	eng := engine.New(store, logger)
	return &harness{
		dispatcher: service.New(eng, store, sched, logger),
		store:      store,
		outbound:   outbound,
	}
}

func (h *harness) next(t *testing.T) models.Delivery {
	t.Helper()
	select {
	case d := <-h.outbound:
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("no delivery on the outbound channel")
		return models.Delivery{}
	}
}

func TestInsertThenIdentifyFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	requestTime := models.NewRequestTime(time.Now())

	testutil.Given(t, "an insert for ref1", func(t *testing.T) {
		resp, err := h.dispatcher.Insert(ctx, &models.InsertRequest{RequestHeader: models.RequestHeader{
			RequestID: "r1", RequestTime: requestTime, ReferenceID: "ref1",
		}})
		require.NoError(t, err)

		testutil.Then(t, "the caller gets a success with correlation fields", func(t *testing.T) {
			assert.Equal(t, models.ReturnSuccess, resp.ReturnValue)
			assert.Equal(t, "r1", resp.RequestID)
			assert.Equal(t, requestTime.String(), resp.ResponseTime.String())
		})

		testutil.Then(t, "the outbound channel receives the same payload tagged insert", func(t *testing.T) {
			d := h.next(t)
			assert.Equal(t, models.MessageInsert, d.MessageType)
			assert.Equal(t, resp, d.Response)
		})

		testutil.Then(t, "the store holds the record", func(t *testing.T) {
			_, err := h.store.Get(ctx, "ref1")
			assert.NoError(t, err)
		})
	})

	testutil.When(t, "identifying an unknown subject", func(t *testing.T) {
		resp, err := h.dispatcher.Identify(ctx, &models.IdentifyRequest{RequestHeader: models.RequestHeader{
			RequestID: "r2", RequestTime: requestTime, ReferenceID: "nobody",
		}})
		require.NoError(t, err)

		testutil.Then(t, "both channels carry BIOMETRIC_NOT_FOUND_IN_CBEFF", func(t *testing.T) {
			require.NotNil(t, resp.FailureReason)
			assert.Equal(t, models.ReturnFailure, resp.ReturnValue)
			assert.Equal(t, models.ReasonBiometricNotFoundInCBEFF, *resp.FailureReason)

			d := h.next(t)
			assert.Equal(t, models.MessageIdentify, d.MessageType)
			assert.Equal(t, resp, d.Response)
		})
	})

	testutil.When(t, "deleting twice", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			resp, err := h.dispatcher.Delete(ctx, &models.DeleteRequest{RequestHeader: models.RequestHeader{
				RequestID: "r3", RequestTime: requestTime, ReferenceID: "ref1",
			}})
			require.NoError(t, err)
			assert.Equal(t, models.ReturnSuccess, resp.ReturnValue)
			assert.Equal(t, models.MessageDelete, h.next(t).MessageType)
		}
	})
}
