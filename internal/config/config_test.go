package config

import (
	"testing"
	"time"

	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "vortex-requests", cfg.KafkaSourceTopic)
	assert.Equal(t, "cylindrical-fields", cfg.KafkaSinkTopic)
	assert.Equal(t, "storm-vortex-etl", cfg.KafkaGroupID)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 500*time.Millisecond, cfg.BatchFlushInterval)
	assert.Equal(t, 256, cfg.GeometryCacheSize)

	opts := cfg.VortexOptions()
	assert.Equal(t, vortex.DefaultOptions(), opts)
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
	t.Setenv("VORTEX_AZIMUTH_COUNT", "72")
	t.Setenv("VORTEX_RADIUS_COUNT", "31")
	t.Setenv("VORTEX_MAX_RADIUS", "6")
	t.Setenv("VORTEX_LON_DIM", "longitude")
	t.Setenv("VORTEX_LAT_DIM", "latitude")
	t.Setenv("VORTEX_TIME_DIM", "valid_time")
	t.Setenv("VORTEX_OUT_OF_DOMAIN", "clamp")
	t.Setenv("GEOMETRY_CACHE_SIZE", "16")

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
	assert.Equal(t, 16, cfg.GeometryCacheSize)

	assert.Equal(t, vortex.Options{
		Grid:    vortex.Grid{AzimuthCount: 72, RadiusCount: 31, MaxRadius: 6},
		LonDim:  "longitude",
		LatDim:  "latitude",
		TimeDim: "valid_time",
		Policy:  vortex.OutOfDomainClamp,
	}, cfg.VortexOptions())
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

func TestLoad_InvalidVortexSettings(t *testing.T) {
	cases := []struct {
		name string
		key  string
		val  string
		want string
	}{
		{"zero azimuths", "VORTEX_AZIMUTH_COUNT", "0", "VORTEX_AZIMUTH_COUNT"},
		{"non-numeric radii", "VORTEX_RADIUS_COUNT", "many", "VORTEX_RADIUS_COUNT"},
		{"negative radius", "VORTEX_MAX_RADIUS", "-1", "VORTEX_MAX_RADIUS"},
		{"radius past antipode", "VORTEX_MAX_RADIUS", "181", "VORTEX_MAX_RADIUS"},
		{"unknown policy", "VORTEX_OUT_OF_DOMAIN", "wrap", "VORTEX_OUT_OF_DOMAIN"},
		{"reserved dim", "VORTEX_LON_DIM", "azim", "VORTEX_"},
		{"repeated dim", "VORTEX_LAT_DIM", "lon", "VORTEX_"},
		{"cache size", "GEOMETRY_CACHE_SIZE", "-4", "GEOMETRY_CACHE_SIZE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
