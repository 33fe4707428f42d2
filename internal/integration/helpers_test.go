//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/storm-vortex-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

// startKafka runs a single-node Kafka container and returns its broker address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("vortex-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

// testRequest builds a small request around a center at (lon, lat) with a
// uniform 10 m/s westerly and a center moving with the same wind.
func testRequest(id string, lon, lat float64) domain.VortexRequest {
	lats := make([]float64, 13)
	lons := make([]float64, 13)
	for i := range lats {
		lats[i] = lat - 6 + float64(i)
		lons[i] = lon - 6 + float64(i)
	}
	n := len(lats) * len(lons)
	u, v := make(domain.Values, n), make(domain.Values, n)
	for i := range u {
		u[i] = 10
	}
	coords := map[string][]float64{"lat": lats, "lon": lons}
	start := time.Date(2004, time.September, 11, 0, 0, 0, 0, time.UTC)
	return domain.VortexRequest{
		ID:    id,
		Track: []domain.TrackPoint{{Time: start, Lon: lon, Lat: lat, U: ptr(10), V: ptr(0)}},
		Grid:  &domain.GridSpec{AzimuthCount: 8, RadiusCount: 3, MaxRadius: 2},
		Fields: []domain.Field{
			{Name: "u", Dims: []string{"lat", "lon"}, Coords: coords, Values: u},
			{Name: "v", Dims: []string{"lat", "lon"}, Coords: coords, Values: v},
		},
		Vectors:       []domain.VectorPair{{U: "u", V: "v"}},
		StormRelative: true,
	}
}
