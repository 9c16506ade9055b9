package biometric

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"mockabis/internal/abis/models"
	"mockabis/internal/platform/config"
)

const breakerName = "cbeff-fetch"

// Client downloads CBEFF documents referenced by insert requests.
type Client struct {
	http   *resty.Client
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient swaps the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = resty.NewWithClient(hc)
		}
	}
}

func NewClient(cfg config.BiometricConfig, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		http:   resty.New(),
		logger: logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.http.
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(100 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: cfg.BreakerHalfOpens,
		Timeout:     cfg.BreakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFails
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state change", "cb_name", name, "from", from.String(), "to", to.String())
			}
		},
	})
	return c
}

// FetchSegments downloads the CBEFF at url and returns its hashed segments.
// Errors wrap ErrFetch, ErrMalformed or ErrNoBiometrics.
func (c *Client) FetchSegments(ctx context.Context, url string) ([]models.BiometricSegment, error) {
	result, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetHeader("Accept", "application/xml").
			Get(url)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() >= http.StatusInternalServerError {
			return nil, fmt.Errorf("status %d", resp.StatusCode())
		}
		// 4xx is the caller's problem, not the upstream's health
		if resp.StatusCode() != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode()), nil
		}
		return resp.Body(), nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open", ErrFetch)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if statusErr, ok := result.(error); ok {
		return nil, fmt.Errorf("%w: %v", ErrFetch, statusErr)
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected response", ErrFetch)
	}
	return ParseCBEFF(body)
}
