package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/storm-outlook-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/storm-outlook-service/internal/adapter/kafka"
	"github.com/couchcryptid/storm-outlook-service/internal/adapter/mapbox"
	"github.com/couchcryptid/storm-outlook-service/internal/adapter/spc"
	"github.com/couchcryptid/storm-outlook-service/internal/config"
	"github.com/couchcryptid/storm-outlook-service/internal/domain"
	"github.com/couchcryptid/storm-outlook-service/internal/observability"
	"github.com/couchcryptid/storm-outlook-service/internal/pipeline"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	// Initialize geocoder (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		geocoder = mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	// Report publishing goes to Kafka when brokers are configured, otherwise to the log.
	var publisher pipeline.Publisher = pipeline.NewLogPublisher(logger)
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	feeds := spc.NewClient(cfg, logger)
	aggregator := pipeline.NewAggregator(feeds, cfg.FeedConcurrency, metrics, logger)
	refresher := pipeline.NewRefresher(aggregator, cfg.Sites, geocoder, publisher, cfg.Options(), metrics, logger)

	scheduler, err := pipeline.NewScheduler(cfg.RefreshSchedule, refresher, metrics, logger)
	if err != nil {
		logger.Error("invalid refresh schedule", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Outlooks: aggregator,
		Reports:  refresher,
		Geocoder: geocoder,
		Ready:    refresher,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Start refresh scheduler.
	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	// Shut the server down once a signal arrives or either goroutine fails.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
