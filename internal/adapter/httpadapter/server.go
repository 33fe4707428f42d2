package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-vortex-etl/internal/vortex"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes health, readiness, metrics, and grid description endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// gridResponse describes the default cylindrical grid so producers can size
// their source domains.
type gridResponse struct {
	AzimuthCount int       `json:"azimuth_count"`
	RadiusCount  int       `json:"radius_count"`
	MaxRadius    float64   `json:"max_radius"`
	Azimuths     []float64 `json:"azimuths"`
	Radii        []float64 `json:"radii"`
	LonDim       string    `json:"lon_dim"`
	LatDim       string    `json:"lat_dim"`
	TimeDim      string    `json:"time_dim"`
	OutOfDomain  string    `json:"out_of_domain"`
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics, and /grid routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, resampler *vortex.Resampler, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /grid", handleGrid(resampler))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func handleGrid(r *vortex.Resampler) http.HandlerFunc {
	opts := r.Options()
	body := gridResponse{
		AzimuthCount: opts.Grid.AzimuthCount,
		RadiusCount:  opts.Grid.RadiusCount,
		MaxRadius:    opts.Grid.MaxRadius,
		Azimuths:     r.Azimuths(),
		Radii:        r.Radii(),
		LonDim:       opts.LonDim,
		LatDim:       opts.LatDim,
		TimeDim:      opts.TimeDim,
		OutOfDomain:  opts.Policy.String(),
	}
	return func(w http.ResponseWriter, _ *http.Request) {
		sharedobs.WriteJSON(w, http.StatusOK, body)
	}
}
