package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"mockabis/internal/abis/models"
	"mockabis/internal/biometric"
	"mockabis/pkg/platform/sentinel"
	"mockabis/pkg/platform/strings"
	"mockabis/pkg/requestcontext"
)

// EnrollmentStore is the subset of the enrollment store the engine needs.
type EnrollmentStore interface {
	Insert(ctx context.Context, record *models.EnrollmentRecord) error
	Get(ctx context.Context, referenceID string) (*models.EnrollmentRecord, error)
	GetMany(ctx context.Context, referenceIDs []string) ([]*models.EnrollmentRecord, error)
	ReferenceIDs(ctx context.Context) ([]string, error)
}

// ExpectationStore looks up scripted answers.
type ExpectationStore interface {
	Get(ctx context.Context, id string) (*models.Expectation, error)
}

// BiometricFetcher resolves an insert's referenceURL to hashed segments.
type BiometricFetcher interface {
	FetchSegments(ctx context.Context, url string) ([]models.BiometricSegment, error)
}

// Engine decides the outcome and delivery delay of inserts and identifies.
// Request-level failures come back as failed Outcomes; a returned error
// always means an infrastructure problem.
type Engine struct {
	enrollments   EnrollmentStore
	expectations  ExpectationStore
	fetcher       BiometricFetcher
	logger        *slog.Logger
	identifyDelay time.Duration
	failureDelay  time.Duration
	findDuplicate atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

func WithExpectations(store ExpectationStore) Option {
	return func(e *Engine) {
		e.expectations = store
	}
}

func WithFetcher(f BiometricFetcher) Option {
	return func(e *Engine) {
		e.fetcher = f
	}
}

// WithIdentifyDelay sets the delivery delay of a successful identify.
func WithIdentifyDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.identifyDelay = d
	}
}

// WithFailureDelay sets the delivery delay used when a lookup or fetch fails
// and no expectation dictates one.
func WithFailureDelay(d time.Duration) Option {
	return func(e *Engine) {
		e.failureDelay = d
	}
}

func WithFindDuplicate(enabled bool) Option {
	return func(e *Engine) {
		e.findDuplicate.Store(enabled)
	}
}

func New(enrollments EnrollmentStore, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		enrollments: enrollments,
		logger:      logger,
	}
	e.findDuplicate.Store(true)
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *Engine) Settings() models.Settings {
	return models.Settings{FindDuplicate: e.findDuplicate.Load()}
}

func (e *Engine) UpdateSettings(s models.Settings) {
	e.findDuplicate.Store(s.FindDuplicate)
}

// Enroll derives a record from the request, resolves its biometrics when a
// referenceURL is given, and upserts it.
func (e *Engine) Enroll(ctx context.Context, req *models.InsertRequest) (models.Outcome, error) {
	record := &models.EnrollmentRecord{
		ReferenceID:  req.ReferenceID,
		RequestID:    req.RequestID,
		ReferenceURL: req.ReferenceURL,
		InsertedAt:   requestcontext.Now(ctx).UTC(),
	}

	if req.ReferenceURL != "" && e.fetcher != nil {
		segments, err := e.fetcher.FetchSegments(ctx, req.ReferenceURL)
		if err != nil {
			reason := models.ReasonUnableToFetchBiometricDetails
			if errors.Is(err, biometric.ErrNoBiometrics) {
				reason = models.ReasonBiometricNotFoundInCBEFF
			}
			e.logger.WarnContext(ctx, "biometric fetch failed",
				"request_id", req.RequestID,
				"reference_id", req.ReferenceID,
				"error", err,
			)
			return models.Failure(reason, e.failureDelay), nil
		}
		record.Biometrics = segments
	}

	exp, err := e.expectationFor(ctx, record)
	if err != nil {
		return models.Outcome{}, err
	}
	var delay time.Duration
	if exp != nil {
		delay, _ = exp.Delay()
		if exp.ActionToInterfere == models.ActionError {
			return models.Failure(exp.Reason(), delay), nil
		}
	}

	if err := e.enrollments.Insert(ctx, record); err != nil {
		return models.Outcome{}, fmt.Errorf("store enrollment: %w", err)
	}
	return models.Success(delay), nil
}

// Identify looks the subject up and compares it against the gallery, or the
// whole store when no gallery is given.
func (e *Engine) Identify(ctx context.Context, req *models.IdentifyRequest) (models.Outcome, error) {
	subject, err := e.enrollments.Get(ctx, req.ReferenceID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Failure(models.ReasonBiometricNotFoundInCBEFF, e.failureDelay), nil
	}
	if err != nil {
		return models.Outcome{}, fmt.Errorf("lookup subject: %w", err)
	}

	exp, err := e.expectationFor(ctx, subject)
	if err != nil {
		return models.Outcome{}, err
	}

	outcome := models.Outcome{Identify: true, Delay: e.identifyDelay}
	switch {
	case exp != nil && exp.ActionToInterfere == models.ActionError:
		delay, _ := exp.Delay()
		return models.Failure(exp.Reason(), delay), nil

	case exp != nil && exp.ActionToInterfere == models.ActionDuplicate:
		if delay, _ := exp.Delay(); delay > outcome.Delay {
			outcome.Delay = delay
		}
		outcome.Candidates = strings.Without(strings.DedupeAndTrim(exp.Gallery.IDs()), subject.ReferenceID)

	case e.findDuplicate.Load():
		candidates, err := e.matchGallery(ctx, subject, req.Gallery)
		if err != nil {
			return models.Outcome{}, err
		}
		outcome.Candidates = candidates
	}

	outcome.Candidates = strings.Limit(outcome.Candidates, req.Flags.Limit())
	return outcome, nil
}

func (e *Engine) matchGallery(ctx context.Context, subject *models.EnrollmentRecord, gallery *models.Gallery) ([]string, error) {
	ids := strings.DedupeAndTrim(gallery.IDs())
	if gallery == nil || len(gallery.ReferenceIDs) == 0 {
		all, err := e.enrollments.ReferenceIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list enrollments: %w", err)
		}
		ids = all
	}
	ids = strings.Without(ids, subject.ReferenceID)
	if len(ids) == 0 {
		return nil, nil
	}

	records, err := e.enrollments.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}
	byID := make(map[string]*models.EnrollmentRecord, len(records))
	for _, r := range records {
		byID[r.ReferenceID] = r
	}

	var matches []string
	for _, id := range ids {
		if r, ok := byID[id]; ok && subject.SharesBiometric(r) {
			matches = append(matches, id)
		}
	}
	return matches, nil
}

// expectationFor returns the first expectation keyed by one of the record's
// biometric hashes, then by its reference id.
func (e *Engine) expectationFor(ctx context.Context, record *models.EnrollmentRecord) (*models.Expectation, error) {
	if e.expectations == nil {
		return nil, nil
	}
	keys := append(record.Hashes(), record.ReferenceID)
	for _, key := range keys {
		exp, err := e.expectations.Get(ctx, key)
		if errors.Is(err, sentinel.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("lookup expectation: %w", err)
		}
		return exp, nil
	}
	return nil, nil
}
