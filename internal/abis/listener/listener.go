// Package listener consumes ABIS requests from the inbound Kafka topic and
// routes them through the same dispatcher as the HTTP endpoints.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"mockabis/internal/abis/models"
	"mockabis/internal/abis/response"
	"mockabis/pkg/requestcontext"
)

// Dispatcher processes ABIS operations.
type Dispatcher interface {
	Insert(ctx context.Context, req *models.InsertRequest) (models.Response, error)
	Delete(ctx context.Context, req *models.DeleteRequest) (models.Response, error)
	Identify(ctx context.Context, req *models.IdentifyRequest) (models.Response, error)
}

// Scheduler queues a delivery for the outbound topic.
type Scheduler interface {
	Schedule(d models.Delivery) string
}

// Consumer is the subset of *kgo.Client the listener polls and commits with.
type Consumer interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
}

// ErrUndecodable marks a record whose payload carries no usable request.
var ErrUndecodable = errors.New("undecodable request")

type Listener struct {
	consumer   Consumer
	dispatcher Dispatcher
	scheduler  Scheduler
	logger     *slog.Logger
}

func New(consumer Consumer, dispatcher Dispatcher, scheduler Scheduler, logger *slog.Logger) *Listener {
	return &Listener{
		consumer:   consumer,
		dispatcher: dispatcher,
		scheduler:  scheduler,
		logger:     logger,
	}
}

// Run polls until ctx is cancelled or the client is closed. Records are
// handled in fetch order and committed once the whole batch was routed.
func (l *Listener) Run(ctx context.Context) error {
	for {
		fetches := l.consumer.PollFetches(ctx)
		if ctx.Err() != nil || fetches.IsClientClosed() {
			return nil
		}
		fetches.EachError(func(topic string, partition int32, err error) {
			l.logger.ErrorContext(ctx, "kafka fetch failed",
				"topic", topic,
				"partition", partition,
				"error", err,
			)
		})

		records := fetches.Records()
		for _, rec := range records {
			if err := l.Handle(ctx, rec); err != nil {
				l.logger.WarnContext(ctx, "inbound record skipped",
					"topic", rec.Topic,
					"partition", rec.Partition,
					"offset", rec.Offset,
					"error", err,
				)
			}
		}
		if len(records) == 0 {
			continue
		}
		if err := l.consumer.CommitRecords(ctx, records...); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.ErrorContext(ctx, "kafka commit failed", "records", len(records), "error", err)
		}
	}
}

// Handle routes one record by its id literal. Requests with an unknown id are
// answered with INVALID_ID; processing errors are answered with
// INTERNAL_ERROR_UNKNOWN right away since no caller is waiting.
func (l *Listener) Handle(ctx context.Context, rec *kgo.Record) error {
	var h models.RequestHeader
	if err := json.Unmarshal(rec.Value, &h); err != nil {
		return fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	ctx = requestcontext.WithSource(ctx, requestcontext.SourceQueue)
	ctx = requestcontext.WithRequestID(ctx, h.RequestID)

	op, ok := models.ParseMessageType(h.ID)
	if !ok {
		l.logger.InfoContext(ctx, "inbound request has unknown id",
			"request_id", h.RequestID,
			"id", h.ID,
		)
		l.scheduler.Schedule(models.Delivery{
			Response:    response.Build(h, models.Failure(models.ReasonInvalidID, 0)),
			MessageType: models.MessageType(h.ID),
		})
		return nil
	}

	_, err := l.route(ctx, op, rec.Value)
	if errors.Is(err, ErrUndecodable) {
		return err
	}
	if err != nil {
		l.logger.ErrorContext(ctx, "inbound request failed",
			"request_id", h.RequestID,
			"operation", op,
			"error", err,
		)
		l.scheduler.Schedule(models.Delivery{
			Response:    response.InternalError(h),
			MessageType: op,
		})
	}
	return nil
}

func (l *Listener) route(ctx context.Context, op models.MessageType, payload []byte) (models.Response, error) {
	switch op {
	case models.MessageInsert:
		req, err := decode[models.InsertRequest](payload)
		if err != nil {
			return models.Response{}, err
		}
		return l.dispatcher.Insert(ctx, req)
	case models.MessageDelete:
		req, err := decode[models.DeleteRequest](payload)
		if err != nil {
			return models.Response{}, err
		}
		return l.dispatcher.Delete(ctx, req)
	default:
		req, err := decode[models.IdentifyRequest](payload)
		if err != nil {
			return models.Response{}, err
		}
		return l.dispatcher.Identify(ctx, req)
	}
}

func decode[T any](payload []byte) (*T, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return &v, nil
}
