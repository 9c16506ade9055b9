package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"mockabis/internal/abis/metrics"
	"mockabis/internal/abis/models"
	"mockabis/internal/abis/response"
	"mockabis/internal/abis/validation"
	"mockabis/pkg/requestcontext"
)

const tracerName = "mockabis/internal/abis/service"

// Engine decides insert and identify outcomes.
type Engine interface {
	Enroll(ctx context.Context, req *models.InsertRequest) (models.Outcome, error)
	Identify(ctx context.Context, req *models.IdentifyRequest) (models.Outcome, error)
}

// EnrollmentRemover deletes enrollments; deleting a missing id succeeds.
type EnrollmentRemover interface {
	Delete(ctx context.Context, referenceID string) error
}

// Scheduler queues a response for deferred delivery.
type Scheduler interface {
	Schedule(d models.Delivery) string
}

// Dispatcher runs each operation through validation, processing and response
// building, schedules the deferred delivery and returns the same response to
// the caller. A non-nil error means processing failed unexpectedly; nothing
// is scheduled in that case and the returned response is the generic
// INTERNAL_ERROR_UNKNOWN failure.
type Dispatcher struct {
	engine    Engine
	store     EnrollmentRemover
	scheduler Scheduler
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

func New(engine Engine, store EnrollmentRemover, scheduler Scheduler, logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine:    engine,
		store:     store,
		scheduler: scheduler,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

func (d *Dispatcher) Insert(ctx context.Context, req *models.InsertRequest) (models.Response, error) {
	return d.dispatch(ctx, models.MessageInsert, req.RequestHeader, func(ctx context.Context) (models.Outcome, error) {
		return d.engine.Enroll(ctx, req)
	})
}

func (d *Dispatcher) Delete(ctx context.Context, req *models.DeleteRequest) (models.Response, error) {
	return d.dispatch(ctx, models.MessageDelete, req.RequestHeader, func(ctx context.Context) (models.Outcome, error) {
		if err := d.store.Delete(ctx, req.ReferenceID); err != nil {
			return models.Outcome{}, fmt.Errorf("delete enrollment: %w", err)
		}
		return models.Success(0), nil
	})
}

func (d *Dispatcher) Identify(ctx context.Context, req *models.IdentifyRequest) (models.Response, error) {
	return d.dispatch(ctx, models.MessageIdentify, req.RequestHeader, func(ctx context.Context) (models.Outcome, error) {
		return d.engine.Identify(ctx, req)
	})
}

func (d *Dispatcher) dispatch(
	ctx context.Context,
	op models.MessageType,
	h models.RequestHeader,
	process func(context.Context) (models.Outcome, error),
) (models.Response, error) {
	ctx, span := d.tracer.Start(ctx, string(op), trace.WithAttributes(
		attribute.String("abis.request_id", h.RequestID),
		attribute.String("abis.reference_id", h.ReferenceID),
		attribute.String("abis.source", string(requestcontext.OperationSource(ctx))),
	))
	defer span.End()
	start := time.Now()
	defer func() { d.metrics.ObserveProcessLatency(string(op), time.Since(start)) }()

	var outcome models.Outcome
	if reason := validation.Validate(h, op); reason != nil {
		outcome = models.Failure(*reason, 0)
		d.logger.InfoContext(ctx, "request rejected",
			"operation", op,
			"request_id", h.RequestID,
			"reason", reason.Name(),
		)
	} else {
		var err error
		outcome, err = process(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "processing failed")
			d.metrics.IncInternalError(string(op))
			d.logger.ErrorContext(ctx, "request processing failed",
				"operation", op,
				"request_id", h.RequestID,
				"reference_id", h.ReferenceID,
				"error", err,
			)
			return response.InternalError(h), err
		}
	}

	resp := response.Build(h, outcome)
	taskID := d.scheduler.Schedule(models.Delivery{
		Response:    resp,
		MessageType: op,
		Delay:       outcome.Delay,
	})

	d.metrics.IncOperation(string(op), resp.ReturnValue)
	if resp.FailureReason != nil {
		d.metrics.IncFailure(resp.FailureReason.Name())
	}
	span.SetAttributes(
		attribute.String("abis.return_value", resp.ReturnValue),
		attribute.String("abis.delivery_task", taskID),
	)
	d.logger.InfoContext(ctx, "request processed",
		"operation", op,
		"source", requestcontext.OperationSource(ctx),
		"request_id", h.RequestID,
		"reference_id", h.ReferenceID,
		"return_value", resp.ReturnValue,
		"delay", outcome.Delay.String(),
		"task_id", taskID,
	)
	return resp, nil
}
