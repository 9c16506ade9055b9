package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"mockabis/internal/abis/engine"
	"mockabis/internal/abis/handler"
	"mockabis/internal/abis/listener"
	abismetrics "mockabis/internal/abis/metrics"
	"mockabis/internal/abis/service"
	"mockabis/internal/biometric"
	"mockabis/internal/delivery"
	deliverymetrics "mockabis/internal/delivery/metrics"
	httpapi "mockabis/internal/http"
	"mockabis/internal/platform/config"
	"mockabis/internal/platform/httpserver"
	"mockabis/internal/platform/kafka"
	"mockabis/internal/platform/logger"
)

// main wires the stores, delivery scheduler, dispatcher and transports, then
// runs the HTTP server, scheduler and optional queue listener until signalled.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logr := logger.New(cfg.Logger)

	if err := run(cfg, logr); err != nil {
		logr.Error("mock abis stopped with error", "error", err)
		os.Exit(1)
	}
	logr.Info("mock abis stopped")
}

func run(cfg *config.Config, logr *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	health := httpapi.NewHealthHandler()
	st, err := buildStores(ctx, cfg, health, logr)
	if err != nil {
		return err
	}
	defer st.close(logr)

	publisher, producer, err := buildPublisher(ctx, cfg, logr)
	if err != nil {
		return err
	}
	if producer != nil {
		defer producer.Close()
	}

	scheduler := delivery.NewScheduler(publisher, logr,
		delivery.WithMetrics(deliverymetrics.New(prometheus.DefaultRegisterer)),
		delivery.WithMaxInFlight(cfg.Scheduler.MaxInFlight),
		delivery.WithPublishTimeout(cfg.Scheduler.PublishTimeout),
	)

	eng := engine.New(st.enrollments, logr,
		engine.WithExpectations(st.expectations),
		engine.WithFetcher(biometric.NewClient(cfg.Biometric, logr)),
		engine.WithIdentifyDelay(cfg.Engine.IdentifyDelay),
		engine.WithFailureDelay(cfg.Scheduler.FailureDelay),
		engine.WithFindDuplicate(cfg.Engine.FindDuplicate),
	)
	dispatcher := service.New(eng, st.enrollments, scheduler, logr,
		service.WithMetrics(abismetrics.New(prometheus.DefaultRegisterer)),
	)

	router := httpapi.NewRouter(logr, health, prometheus.DefaultGatherer,
		handler.New(dispatcher, logr),
		handler.NewConfigHandler(st.expectations, eng, logr),
	)
	srv := httpserver.New(cfg.Server, router)

	var l *listener.Listener
	if cfg.Kafka.ListenerEnabled {
		consumer, err := kafka.NewConsumer(cfg.Kafka)
		if err != nil {
			return err
		}
		defer consumer.Close()
		l = listener.New(consumer, dispatcher, scheduler, logr)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		logr.Info("starting mock abis", "addr", cfg.Server.Addr, "env", cfg.Primary.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if l != nil {
		g.Go(func() error {
			logr.Info("queue listener started", "topic", cfg.Kafka.InboundTopic, "group", cfg.Kafka.ConsumerGroup)
			return l.Run(gctx)
		})
	}

	return g.Wait()
}

// buildPublisher returns a Kafka publisher when brokers are configured and a
// log publisher otherwise. The producer client is returned for closing.
func buildPublisher(ctx context.Context, cfg *config.Config, logr *slog.Logger) (delivery.Publisher, *kgo.Client, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		logr.Warn("no kafka brokers configured, deliveries are logged only")
		return delivery.NewLogPublisher(logr), nil, nil
	}
	producer, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if err := kafka.EnsureTopics(ctx, producer, cfg.Kafka, logr); err != nil {
		producer.Close()
		return nil, nil, err
	}
	return delivery.NewKafkaPublisher(producer, cfg.Kafka.OutboundTopic), producer, nil
}
