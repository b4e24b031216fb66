package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
	testGoogleKey   = "AIza-test-key"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "locality-requests", cfg.KafkaSourceTopic)
	assert.Equal(t, "locality-georeferences", cfg.KafkaSinkTopic)
	assert.Equal(t, "locality-georef", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)

	assert.Equal(t, GeocoderNone, cfg.Geocoder)
	assert.Equal(t, 1000, cfg.GeocodeCacheSize)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 5*time.Second, cfg.GoogleTimeout)
	assert.InDelta(t, 10, cfg.GoogleRateLimit, 0)

	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 168*time.Hour, cfg.RedisTTL)
	assert.Empty(t, cfg.PredictURL)
	assert.Equal(t, 2*time.Second, cfg.PredictTimeout)

	assert.InDelta(t, 100, cfg.RooftopRadiusM, 0)
	assert.InDelta(t, 1000, cfg.DefaultRadiusM, 0)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SOURCE_TOPIC", "custom-source")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("KAFKA_GROUP_ID", "custom-group")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("BATCH_SIZE", "100")
	t.Setenv("BATCH_FLUSH_INTERVAL", "1s")
	t.Setenv("GEOCODER", "Google")
	t.Setenv("GOOGLE_API_KEY", testGoogleKey)
	t.Setenv("GOOGLE_TIMEOUT", "3s")
	t.Setenv("GOOGLE_RATE_LIMIT", "2.5")
	t.Setenv("GEOCODE_CACHE_SIZE", "500")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("REDIS_TTL", "1h")
	t.Setenv("PREDICT_URL", "http://predict:8000/predict")
	t.Setenv("PREDICT_TIMEOUT", "500ms")
	t.Setenv("FEATURE_ROOFTOP_RADIUS_M", "25")
	t.Setenv("FEATURE_DEFAULT_RADIUS_M", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-source", cfg.KafkaSourceTopic)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.Equal(t, "custom-group", cfg.KafkaGroupID)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 1*time.Second, cfg.BatchFlushInterval)

	assert.Equal(t, GeocoderGoogle, cfg.Geocoder)
	assert.Equal(t, testGoogleKey, cfg.GoogleAPIKey)
	assert.Equal(t, 3*time.Second, cfg.GoogleTimeout)
	assert.InDelta(t, 2.5, cfg.GoogleRateLimit, 0)
	assert.Equal(t, 500, cfg.GeocodeCacheSize)

	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, "secret", cfg.RedisPassword)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, time.Hour, cfg.RedisTTL)
	assert.Equal(t, "http://predict:8000/predict", cfg.PredictURL)
	assert.Equal(t, 500*time.Millisecond, cfg.PredictTimeout)

	assert.InDelta(t, 25, cfg.RooftopRadiusM, 0)
	assert.InDelta(t, 2500, cfg.DefaultRadiusM, 0)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidBatchSize(t *testing.T) {
	t.Setenv("BATCH_SIZE", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_SIZE")
}

func TestLoad_InvalidBatchFlushInterval(t *testing.T) {
	t.Setenv("BATCH_FLUSH_INTERVAL", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BATCH_FLUSH_INTERVAL")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"MAPBOX_TIMEOUT", "bad"},
		{"GOOGLE_TIMEOUT", "-1s"},
		{"GOOGLE_RATE_LIMIT", "0"},
		{"GEOCODE_CACHE_SIZE", "-5"},
		{"REDIS_TTL", "forever"},
		{"REDIS_DB", "one"},
		{"PREDICT_TIMEOUT", "0s"},
		{"FEATURE_ROOFTOP_RADIUS_M", "abc"},
		{"FEATURE_DEFAULT_RADIUS_M", "-100"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_GeocoderSelection(t *testing.T) {
	t.Run("mapbox token implies mapbox", func(t *testing.T) {
		t.Setenv("MAPBOX_TOKEN", testMapboxToken)
		t.Setenv("GOOGLE_API_KEY", testGoogleKey)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, GeocoderMapbox, cfg.Geocoder)
	})

	t.Run("google key implies google", func(t *testing.T) {
		t.Setenv("GOOGLE_API_KEY", testGoogleKey)
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, GeocoderGoogle, cfg.Geocoder)
	})

	t.Run("explicitly disabled", func(t *testing.T) {
		t.Setenv("MAPBOX_TOKEN", testMapboxToken)
		t.Setenv("GEOCODER", "none")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, GeocoderNone, cfg.Geocoder)
	})

	t.Run("mapbox without token", func(t *testing.T) {
		t.Setenv("GEOCODER", "mapbox")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MAPBOX_TOKEN")
	})

	t.Run("google without key", func(t *testing.T) {
		t.Setenv("GEOCODER", "google")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
	})

	t.Run("gazetteer path implies gazetteer", func(t *testing.T) {
		t.Setenv("GAZETTEER_PATH", "data/mock/gazetteer.json")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, GeocoderGazetteer, cfg.Geocoder)
		assert.Equal(t, "data/mock/gazetteer.json", cfg.GazetteerPath)
	})

	t.Run("gazetteer without path", func(t *testing.T) {
		t.Setenv("GEOCODER", "gazetteer")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GAZETTEER_PATH")
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Setenv("GEOCODER", "osm")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEOCODER")
	})
}
