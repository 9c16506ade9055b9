package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"mockabis/internal/abis/engine"
	"mockabis/internal/abis/handler"
	"mockabis/internal/abis/store/enrollment"
	"mockabis/internal/abis/store/expectation"
	httpapi "mockabis/internal/http"
	"mockabis/internal/platform/config"
	"mockabis/internal/platform/postgres"
	"mockabis/internal/platform/redis"
)

type enrollmentStore interface {
	engine.EnrollmentStore
	Delete(ctx context.Context, referenceID string) error
}

type stores struct {
	enrollments  enrollmentStore
	expectations handler.ExpectationStore
	closers      []func() error
}

func (s *stores) close(logger *slog.Logger) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}
}

// buildStores opens the configured backend and registers its readiness checks.
// Expectations live in redis whenever a redis URL is configured.
func buildStores(ctx context.Context, cfg *config.Config, health *httpapi.HealthHandler, logger *slog.Logger) (*stores, error) {
	s := &stores{}

	var rc *redis.Client
	if cfg.Redis.URL != "" {
		var err error
		rc, err = redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, rc.Close)
		health.AddCheck("redis", rc.Health)
	}

	if rc != nil {
		s.expectations = expectation.NewRedis(rc.Client)
	} else {
		s.expectations = expectation.NewInMemory()
	}

	switch cfg.Store.Backend {
	case config.BackendRedis:
		s.enrollments = enrollment.NewRedis(rc.Client)
	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			s.close(logger)
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		health.AddCheck("postgres", pingDB(db))

		pg := enrollment.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			s.close(logger)
			return nil, fmt.Errorf("ensure enrollment schema: %w", err)
		}
		s.enrollments = pg
	default:
		s.enrollments = enrollment.NewInMemory()
	}

	logger.InfoContext(ctx, "stores ready",
		"backend", cfg.Store.Backend,
		"expectations_in_redis", rc != nil,
	)
	return s, nil
}

func pingDB(db *sql.DB) httpapi.CheckFunc {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
