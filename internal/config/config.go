package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
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

	// Cylindrical grid and resampling defaults. Requests may override the grid.
	AzimuthCount int
	RadiusCount  int
	MaxRadius    float64
	LonDim       string
	LatDim       string
	TimeDim      string
	OutOfDomain  vortex.OutOfDomain

	GeometryCacheSize int
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

	azimuthCount, err := parsePositiveInt("VORTEX_AZIMUTH_COUNT", vortex.DefaultAzimuthCount)
	if err != nil {
		return nil, err
	}
	radiusCount, err := parsePositiveInt("VORTEX_RADIUS_COUNT", vortex.DefaultRadiusCount)
	if err != nil {
		return nil, err
	}
	maxRadius, err := parseMaxRadius()
	if err != nil {
		return nil, err
	}
	policy, err := vortex.ParseOutOfDomain(os.Getenv("VORTEX_OUT_OF_DOMAIN"))
	if err != nil {
		return nil, fmt.Errorf("invalid VORTEX_OUT_OF_DOMAIN: %w", err)
	}
	cacheSize, err := parsePositiveInt("GEOMETRY_CACHE_SIZE", 256)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "vortex-requests"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "cylindrical-fields"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "storm-vortex-etl"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		AzimuthCount: azimuthCount,
		RadiusCount:  radiusCount,
		MaxRadius:    maxRadius,
		LonDim:       sharedcfg.EnvOrDefault("VORTEX_LON_DIM", "lon"),
		LatDim:       sharedcfg.EnvOrDefault("VORTEX_LAT_DIM", "lat"),
		TimeDim:      sharedcfg.EnvOrDefault("VORTEX_TIME_DIM", "time"),
		OutOfDomain:  policy,

		GeometryCacheSize: cacheSize,
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
	if _, err := vortex.NewResampler(cfg.VortexOptions()); err != nil {
		return nil, fmt.Errorf("invalid VORTEX_* settings: %w", err)
	}

	return cfg, nil
}

// VortexOptions returns the default resampler options for the service.
func (c *Config) VortexOptions() vortex.Options {
	return vortex.Options{
		Grid: vortex.Grid{
			AzimuthCount: c.AzimuthCount,
			RadiusCount:  c.RadiusCount,
			MaxRadius:    c.MaxRadius,
		},
		LonDim:  c.LonDim,
		LatDim:  c.LatDim,
		TimeDim: c.TimeDim,
		Policy:  c.OutOfDomain,
	}
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

func parseMaxRadius() (float64, error) {
	s := os.Getenv("VORTEX_MAX_RADIUS")
	if s == "" {
		return vortex.DefaultMaxRadius, nil
	}
	r, err := strconv.ParseFloat(s, 64)
	if err != nil || r < 0 || r > 180 {
		return 0, errors.New("invalid VORTEX_MAX_RADIUS: must be between 0 and 180 degrees")
	}
	return r, nil
}
