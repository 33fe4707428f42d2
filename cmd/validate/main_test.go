package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/storm-vortex-etl/internal/domain"
	"github.com/couchcryptid/storm-vortex-etl/internal/observability"
	"github.com/couchcryptid/storm-vortex-etl/internal/pipeline"
	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRequest() domain.VortexRequest {
	lats := []float64{14, 16, 18, 20, 22, 24, 26}
	lons := []float64{114, 116, 118, 120, 122, 124, 126}
	n := len(lats) * len(lons)
	u, v, z := make(domain.Values, n), make(domain.Values, n), make(domain.Values, n)
	for i := range lats {
		for j := range lons {
			k := i*len(lons) + j
			u[k] = lons[j] - 120
			v[k] = 20 - lats[i]
			z[k] = 5000 + 10*lats[i]
		}
	}
	coords := map[string][]float64{"lat": lats, "lon": lons}
	start := time.Date(2004, time.September, 11, 0, 0, 0, 0, time.UTC)
	return domain.VortexRequest{
		ID: "haima-2004",
		Track: []domain.TrackPoint{
			{Time: start, Lon: 120, Lat: 20},
			{Time: start.Add(6 * time.Hour), Lon: 119.6, Lat: 20.5},
		},
		Grid: &domain.GridSpec{AzimuthCount: 8, RadiusCount: 4, MaxRadius: 3},
		Fields: []domain.Field{
			{Name: "u", Dims: []string{"lat", "lon"}, Coords: coords, Values: u},
			{Name: "v", Dims: []string{"lat", "lon"}, Coords: coords, Values: v},
			{Name: "z", Dims: []string{"lat", "lon"}, Coords: coords, Values: z},
		},
		Vectors:       []domain.VectorPair{{U: "u", V: "v"}},
		StormRelative: true,
	}
}

// writeFixtures runs req through the transformer and writes both sides to disk.
func writeFixtures(t *testing.T, req domain.VortexRequest, tamper func(*domain.CylindricalEvent)) (string, string) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2004, time.September, 11, 7, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	metrics := observability.NewMetricsForTesting()
	tfm, err := pipeline.NewTransformer(vortex.DefaultOptions(), pipeline.NewGeometryCache(1, metrics), slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	require.NoError(t, err)

	reqData, err := json.Marshal(req)
	require.NoError(t, err)
	out, err := tfm.Transform(context.Background(), domain.RawEvent{Value: reqData})
	require.NoError(t, err)

	eventData := out.Value
	if tamper != nil {
		var event domain.CylindricalEvent
		require.NoError(t, json.Unmarshal(out.Value, &event))
		tamper(&event)
		eventData, err = json.Marshal(event)
		require.NoError(t, err)
	}

	dir := t.TempDir()
	reqPath := filepath.Join(dir, "request.json")
	eventPath := filepath.Join(dir, "event.json")
	require.NoError(t, os.WriteFile(reqPath, reqData, 0o600))
	require.NoError(t, os.WriteFile(eventPath, eventData, 0o600))
	return reqPath, eventPath
}

func TestRun_ValidEvent(t *testing.T) {
	reqPath, eventPath := writeFixtures(t, testRequest(), nil)

	var out bytes.Buffer
	code := run(&out, reqPath, eventPath, vortex.DefaultOptions())
	assert.Equal(t, 0, code, out.String())
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestRun_TamperedEvent(t *testing.T) {
	cases := []struct {
		name   string
		tamper func(*domain.CylindricalEvent)
		phase  string
	}{
		{"shifted center", func(e *domain.CylindricalEvent) { e.Lons.Values[0] += 0.5 }, "Radius zero at track centers"},
		{"scaled component", func(e *domain.CylindricalEvent) { e.Components[0].Azimuthal.Values[5] *= 2 }, "Rotation preserves wind speed"},
		{"dropped correction", func(e *domain.CylindricalEvent) { e.Components[0].AzimuthalRel = nil }, "Storm-relative components invert"},
		{"wrong missing count", func(e *domain.CylindricalEvent) { e.MissingValues++ }, "Grid layout"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reqPath, eventPath := writeFixtures(t, testRequest(), tc.tamper)

			var out bytes.Buffer
			code := run(&out, reqPath, eventPath, vortex.DefaultOptions())
			assert.Equal(t, 1, code)
			assert.Contains(t, out.String(), "--- "+tc.phase+" ---")
			assert.Contains(t, out.String(), "--- Replay reproduces event ---")
		})
	}
}

func TestCoordIndex(t *testing.T) {
	f := domain.Field{
		Dims:   []string{"time", vortex.AzimuthDim, vortex.RadiusDim},
		Coords: map[string][]float64{"time": {0, 1}, vortex.AzimuthDim: {0, 120, 240}, vortex.RadiusDim: {0, 1, 2, 3}},
	}
	assert.Equal(t, 1, coordIndex(f, 12, "time"))
	assert.Equal(t, 2, coordIndex(f, 11, vortex.AzimuthDim))
	assert.Equal(t, 3, coordIndex(f, 11, vortex.RadiusDim))
}
