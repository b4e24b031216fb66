package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/couchcryptid/locality-georef/internal/adapter/gazetteer"
	"github.com/couchcryptid/locality-georef/internal/adapter/geocache"
	"github.com/couchcryptid/locality-georef/internal/adapter/google"
	"github.com/couchcryptid/locality-georef/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/locality-georef/internal/adapter/kafka"
	"github.com/couchcryptid/locality-georef/internal/adapter/mapbox"
	"github.com/couchcryptid/locality-georef/internal/adapter/predict"
	"github.com/couchcryptid/locality-georef/internal/adapter/rediscache"
	"github.com/couchcryptid/locality-georef/internal/config"
	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/observability"
	"github.com/couchcryptid/locality-georef/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		logger.Info("redis cache enabled", "addr", cfg.RedisAddr, "db", cfg.RedisDB, "ttl", cfg.RedisTTL)
	}

	geocoder, err := newGeocoder(cfg, redisClient, metrics, logger)
	if err != nil {
		logger.Error("failed to initialize geocoder", "error", err)
		os.Exit(1)
	}
	classifier := newClassifier(cfg, redisClient, logger)
	policy := domain.ExtentPolicy{RooftopRadiusM: cfg.RooftopRadiusM, DefaultRadiusM: cfg.DefaultRadiusM}
	georeferencer := domain.NewGeoreferencer(classifier, geocoder, policy, logger)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(georeferencer, metrics, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, georeferencer, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start georeferencing pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newGeocoder builds the configured provider behind the Redis cache, if
// any, and the in-process cache. A nil geocoder disables georeferencing
// of features.
func newGeocoder(cfg *config.Config, redisClient *redis.Client, metrics *observability.Metrics, logger *slog.Logger) (domain.Geocoder, error) {
	var geocoder domain.Geocoder
	switch cfg.Geocoder {
	case config.GeocoderMapbox:
		geocoder = mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
		logger.Info("mapbox geocoding enabled", "timeout", cfg.MapboxTimeout)
	case config.GeocoderGoogle:
		geocoder = google.NewClient(cfg.GoogleAPIKey, cfg.GoogleTimeout, cfg.GoogleRateLimit, metrics, logger)
		logger.Info("google geocoding enabled", "timeout", cfg.GoogleTimeout, "rate_limit", cfg.GoogleRateLimit)
	case config.GeocoderGazetteer:
		g, err := gazetteer.LoadFile(cfg.GazetteerPath)
		if err != nil {
			return nil, err
		}
		logger.Info("gazetteer geocoding enabled", "path", cfg.GazetteerPath, "places", g.Len())
		return g, nil
	default:
		logger.Info("geocoding disabled")
		return nil, nil
	}

	if redisClient != nil {
		geocoder = rediscache.NewGeocoder(geocoder, redisClient, cfg.RedisTTL, metrics, logger)
	}
	logger.Info("geocode cache enabled", "cache_size", cfg.GeocodeCacheSize)
	return geocache.NewGeocoder(geocoder, cfg.GeocodeCacheSize, metrics), nil
}

// newClassifier returns the prediction service client, behind the Redis
// cache if any. A nil classifier means rule-based classification.
func newClassifier(cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) domain.Classifier {
	if cfg.PredictURL == "" {
		logger.Info("locality type prediction disabled, classifying by rules")
		return nil
	}
	logger.Info("locality type prediction enabled", "url", cfg.PredictURL, "timeout", cfg.PredictTimeout)
	var classifier domain.Classifier = predict.NewClient(cfg.PredictURL, cfg.PredictTimeout, logger)
	if redisClient != nil {
		classifier = rediscache.NewClassifier(classifier, redisClient, cfg.RedisTTL, logger)
	}
	return classifier
}
