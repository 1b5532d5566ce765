package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/your-org/blobingest/internal/ingestion"
	"github.com/your-org/blobingest/pkg/config"
	"github.com/your-org/blobingest/pkg/kafka"
	"github.com/your-org/blobingest/pkg/logger"
	"github.com/your-org/blobingest/pkg/metrics"
	"github.com/your-org/blobingest/pkg/storage/objectstore"
	"github.com/your-org/blobingest/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logr.Sync() //nolint:errcheck

	traceShutdown, err := tracing.Init(ctx, tracing.Config{
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		Attributes:  tracing.ParseResourceAttributes(cfg.Tracing.ResourceAttr),
		ServiceName: cfg.App.Name,
		Version:     cfg.App.Version,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer traceShutdown(context.Background()) //nolint:errcheck

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	gateMetrics := metrics.New(registry)

	namePolicy, err := objectstore.ParseNamePolicy(cfg.Storage.NamePolicy)
	if err != nil {
		return fmt.Errorf("parse name policy: %w", err)
	}

	store, err := objectstore.New(ctx, objectstore.Config{
		Provider:  cfg.Storage.Provider,
		Endpoint:  cfg.Storage.Endpoint,
		Region:    cfg.Storage.Region,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		UseSSL:    cfg.Storage.UseSSL,
		PathStyle: cfg.Storage.PathStyle,
		PartSize:  cfg.Storage.PartSize,
	})
	if err != nil {
		return fmt.Errorf("init object store: %w", err)
	}

	policy, err := ingestion.ParseFailurePolicy(cfg.Upload.FailurePolicy)
	if err != nil {
		return fmt.Errorf("parse failure policy: %w", err)
	}

	params := ingestion.Params{
		Store:     objectstore.WithNamePolicy(store, namePolicy),
		Container: cfg.Storage.Container,
		Policy:    policy,
		Metrics:   gateMetrics,
		Logger:    logr,
	}
	if cfg.Kafka.Enabled {
		params.Publisher = ingestion.NewKafkaPublisher(kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.UploadTopic,
			BatchSize:    cfg.Kafka.BatchSize,
			BatchTimeout: cfg.Kafka.BatchTimeout,
			Compression:  kafka.CompressionFromString(cfg.Kafka.CompressionCodec),
			RequiredAcks: kafkago.RequireAll,
			MaxAttempts:  cfg.Kafka.Retries,
		}))
	}

	service := ingestion.NewService(params)
	handler := ingestion.NewHTTPHandler(service, logr, cfg.Upload.MaxSizeBytes)

	server := &http.Server{
		Handler:      handler.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}
	metricsServer := metrics.NewServer(cfg.Metrics.Addr, registry)

	uploadLn, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		service.Close(context.Background()) //nolint:errcheck
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
	}
	metricsLn, err := net.Listen("tcp", cfg.Metrics.Addr)
	if err != nil {
		uploadLn.Close()                    //nolint:errcheck
		service.Close(context.Background()) //nolint:errcheck
		return fmt.Errorf("listen %s: %w", cfg.Metrics.Addr, err)
	}

	logr.Info("upload service starting",
		zap.String("addr", uploadLn.Addr().String()),
		zap.String("storage_provider", cfg.Storage.Provider),
		zap.String("container", cfg.Storage.Container),
	)
	return serve(ctx, logr, service, cfg.HTTP.ShutdownTimeout,
		endpoint{name: "http", server: server, listener: uploadLn},
		endpoint{name: "metrics", server: metricsServer, listener: metricsLn},
	)
}

type endpoint struct {
	name     string
	server   *http.Server
	listener net.Listener
}

type closer interface {
	Close(ctx context.Context) error
}

// serve runs the endpoints until ctx is done or one of them fails. Before it
// returns, every server has drained its in-flight requests (bounded by grace)
// and svc has been closed, so pending events are flushed.
func serve(ctx context.Context, logr *zap.Logger, svc closer, grace time.Duration, endpoints ...endpoint) error {
	serveErr := make(chan error, len(endpoints))
	for _, ep := range endpoints {
		go func() {
			logr.Info("server listening", zap.String("server", ep.name), zap.String("addr", ep.listener.Addr().String()))
			if err := ep.server.Serve(ep.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- fmt.Errorf("%s server: %w", ep.name, err)
			}
		}()
	}

	var errs []error
	select {
	case <-ctx.Done():
		logr.Info("shutting down")
	case err := <-serveErr:
		logr.Error("server failed, shutting down", zap.Error(err))
		errs = append(errs, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	for _, ep := range endpoints {
		if err := ep.server.Shutdown(shutdownCtx); err != nil {
			logr.Error("server shutdown failed", zap.String("server", ep.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("shutdown %s server: %w", ep.name, err))
		}
	}
	if err := svc.Close(shutdownCtx); err != nil {
		logr.Error("service shutdown failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("close service: %w", err))
	}
	logr.Info("shutdown complete")
	return errors.Join(errs...)
}
