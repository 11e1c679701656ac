package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/application/usecase"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/domain/port"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/infrastructure/artifact"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/infrastructure/config"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/infrastructure/kafka"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/infrastructure/postgres"
	grpcpresentation "github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/presentation/grpc"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/internal/presentation/rest"
	pkgkafka "github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/kafka"
	"github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/observability"
	pgutil "github.com/amed-elmi-dev/medical-insurance-cost-predictor/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	// Initialize structured logger via shared observability package.
	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: cfg.ServiceName,
	})

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("starting "+cfg.ServiceName,
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"artifacts", cfg.ArtifactURI,
	)

	// Initialize tracing.
	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// Initialize metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	metrics, err := observability.NewPredictionMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("failed to register prediction metrics", "error", err)
		os.Exit(1)
	}

	// Load the artifact set. Any failure here is fatal.
	loadCtx, loadCancel := context.WithTimeout(ctx, 30*time.Second)
	source, err := artifact.NewSource(loadCtx, cfg.ArtifactURI, cfg.AWSRegion)
	if err != nil {
		loadCancel()
		logger.Error("failed to open artifact source", "error", err)
		os.Exit(1)
	}
	set, err := artifact.NewLoader(source, logger).Load(loadCtx)
	loadCancel()
	if err != nil {
		logger.Error("failed to load artifacts", "error", err)
		os.Exit(1)
	}

	encoder, predictor, err := set.Pipeline(logger, metrics)
	if err != nil {
		logger.Error("artifact set is inconsistent", "error", err)
		os.Exit(1)
	}

	// Optional audit store.
	var (
		repo   port.PredictionRepository
		checks []rest.ReadinessCheck
	)
	if cfg.Database.Enabled() {
		if err := pgutil.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pgutil.NewPool(dbCtx, pgutil.Config{
			URL:      cfg.Database.URL,
			MaxConns: int32(cfg.Database.MaxConns),
		})
		dbCancel()
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		logger.Info("connected to database")

		repo = postgres.NewPredictionRepository(pool)
		checks = append(checks, rest.ReadinessCheck{
			Name:  "database",
			Probe: func(ctx context.Context) error { return pgutil.HealthCheck(ctx, pool) },
		})
	}

	// Optional event publishing.
	var publisher port.EventPublisher
	if cfg.Kafka.Enabled() {
		producer, err := pkgkafka.NewProducer(pkgkafka.Config{
			Brokers:       cfg.Kafka.Brokers,
			ClientID:      cfg.ServiceName,
			TLS:           cfg.Kafka.TLS,
			SASLEnabled:   cfg.Kafka.SASLMechanism != "",
			SASLMechanism: cfg.Kafka.SASLMechanism,
			SASLUsername:  cfg.Kafka.SASLUsername,
			SASLPassword:  cfg.Kafka.SASLPassword,
		})
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		publisher = kafka.NewPublisher(producer, cfg.Kafka.Topic, logger)
		logger.Info("publishing prediction events", "topic", cfg.Kafka.Topic)
	}

	// Wire use cases.
	predictCostUC := usecase.NewPredictCost(encoder, predictor, set.Version(), repo, publisher, metrics, logger)
	getPredictionUC := usecase.NewGetPrediction(repo)

	// gRPC server (health only).
	grpcServer, err := grpcpresentation.NewServer(cfg.GRPCAddress(), grpcpresentation.Options{
		TLSCertFile: cfg.GRPC.TLSCertFile,
		TLSKeyFile:  cfg.GRPC.TLSKeyFile,
		Reflection:  cfg.GRPC.Reflection,
	}, logger)
	if err != nil {
		logger.Error("failed to create gRPC server", "error", err)
		os.Exit(1)
	}

	// HTTP server.
	healthHandler := rest.NewHealthHandler(cfg.ServiceName, logger, checks...)
	predictionHandler := rest.NewPredictionHandler(predictCostUC, getPredictionUC, cfg.HTTP.MaxBodyBytes, logger)

	router := rest.NewRouter(rest.RouterConfig{
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		RateLimitRPS:      cfg.HTTP.RateLimitRPS,
		TrustForwardedFor: cfg.HTTP.TrustForwardedFor,
		MetricsHandler:    metricsHandler,
	}, logger, metrics, predictionHandler, healthHandler)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.HTTP.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	healthHandler.SetArtifactsLoaded(true)
	grpcServer.SetServing(true)

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info(cfg.ServiceName+" started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"model_version", set.Version(),
		"audit_store", repo != nil,
		"event_publishing", publisher != nil,
	)

	// Wait for shutdown signal.
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	// Graceful shutdown.
	logger.Info("shutting down " + cfg.ServiceName)

	healthHandler.SetArtifactsLoaded(false)
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		logger.Error("meter provider shutdown error", "error", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		logger.Error("tracer shutdown error", "error", err)
	}

	logger.Info(cfg.ServiceName + " stopped")
}
