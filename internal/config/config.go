package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Geocoding providers selectable with GEOCODER.
const (
	GeocoderMapbox    = "mapbox"
	GeocoderGoogle    = "google"
	GeocoderGazetteer = "gazetteer"
	GeocoderNone      = "none"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Geocoder selects the provider: mapbox, google, gazetteer, or none.
	Geocoder         string
	GeocodeCacheSize int

	MapboxToken   string
	MapboxTimeout time.Duration

	GoogleAPIKey    string
	GoogleTimeout   time.Duration
	GoogleRateLimit float64 // requests per second

	// GazetteerPath is a JSON file of places for offline geocoding.
	GazetteerPath string

	// Redis is optional; an empty address disables the shared cache.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// PredictURL is optional; without it localities are classified by rules.
	PredictURL     string
	PredictTimeout time.Duration

	RooftopRadiusM float64
	DefaultRadiusM float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "locality-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "locality-georeferences"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "locality-georef"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		MapboxToken:   os.Getenv("MAPBOX_TOKEN"),
		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GazetteerPath: os.Getenv("GAZETTEER_PATH"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		PredictURL:    os.Getenv("PREDICT_URL"),
	}

	if cfg.GeocodeCacheSize, err = positiveInt("GEOCODE_CACHE_SIZE", 1000); err != nil {
		return nil, err
	}
	if cfg.MapboxTimeout, err = positiveDuration("MAPBOX_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.GoogleTimeout, err = positiveDuration("GOOGLE_TIMEOUT", "5s"); err != nil {
		return nil, err
	}
	if cfg.GoogleRateLimit, err = positiveFloat("GOOGLE_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.RedisTTL, err = positiveDuration("REDIS_TTL", "168h"); err != nil {
		return nil, err
	}
	if cfg.PredictTimeout, err = positiveDuration("PREDICT_TIMEOUT", "2s"); err != nil {
		return nil, err
	}
	if cfg.RooftopRadiusM, err = positiveFloat("FEATURE_ROOFTOP_RADIUS_M", 100); err != nil {
		return nil, err
	}
	if cfg.DefaultRadiusM, err = positiveFloat("FEATURE_DEFAULT_RADIUS_M", 1000); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0")); err != nil || cfg.RedisDB < 0 {
		return nil, errors.New("invalid REDIS_DB: must be a non-negative integer")
	}

	cfg.Geocoder = strings.ToLower(os.Getenv("GEOCODER"))
	if cfg.Geocoder == "" {
		cfg.Geocoder = defaultGeocoder(cfg)
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	switch cfg.Geocoder {
	case GeocoderMapbox:
		if cfg.MapboxToken == "" {
			return nil, errors.New("GEOCODER is mapbox but MAPBOX_TOKEN is not set")
		}
	case GeocoderGoogle:
		if cfg.GoogleAPIKey == "" {
			return nil, errors.New("GEOCODER is google but GOOGLE_API_KEY is not set")
		}
	case GeocoderGazetteer:
		if cfg.GazetteerPath == "" {
			return nil, errors.New("GEOCODER is gazetteer but GAZETTEER_PATH is not set")
		}
	case GeocoderNone:
	default:
		return nil, fmt.Errorf("invalid GEOCODER %q: must be mapbox, google, gazetteer, or none", cfg.Geocoder)
	}

	return cfg, nil
}

// defaultGeocoder picks the first provider with credentials.
func defaultGeocoder(cfg *Config) string {
	switch {
	case cfg.MapboxToken != "":
		return GeocoderMapbox
	case cfg.GoogleAPIKey != "":
		return GeocoderGoogle
	case cfg.GazetteerPath != "":
		return GeocoderGazetteer
	default:
		return GeocoderNone
	}
}

func positiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

func positiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func positiveFloat(key string, fallback float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive number", key)
	}
	return f, nil
}
