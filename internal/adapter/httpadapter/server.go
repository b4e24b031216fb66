package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/locality-georef/internal/domain"
	"github.com/couchcryptid/locality-georef/internal/geo"
	"github.com/couchcryptid/locality-georef/internal/observability"
)

// maxRequestBytes caps the body of a georef request.
const maxRequestBytes = 64 << 10

// Georeferencer resolves a free-text location. *domain.Georeferencer
// implements it.
type Georeferencer interface {
	Georeference(ctx context.Context, id, location string) (domain.GeorefResult, error)
}

// Server exposes health, readiness, metrics and georeferencing HTTP endpoints.
type Server struct {
	httpServer    *http.Server
	georeferencer Georeferencer
	metrics       *observability.Metrics
	logger        *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics and
// /v1/georef routes.
func NewServer(addr string, ready sharedobs.ReadinessChecker, g Georeferencer, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		georeferencer: g,
		metrics:       metrics,
		logger:        logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("POST /v1/georef", s.handleGeoref)

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

// handleGeoref georeferences the location in the request body. With
// ?format=geojson the combined boxes are returned as a feature collection.
func (s *Server) handleGeoref(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format != "" && format != "json" && format != "geojson" {
		writeError(w, http.StatusBadRequest, "unsupported format "+format)
		return
	}

	var req domain.LocalityRequest
	body := http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Location) == "" {
		writeError(w, http.StatusBadRequest, domain.ErrEmptyLocation.Error())
		return
	}
	if req.ID == "" {
		req.ID = domain.RequestID(req.Location)
	}

	result, err := s.georeferencer.Georeference(r.Context(), req.ID, req.Location)
	if err != nil {
		s.logger.Error("georeference failed", "id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.RecordResult(result)

	if format == "geojson" {
		writeGeoJSON(w, geo.FeatureCollection(result.ID, result.Boxes()))
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func writeGeoJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // response already committed
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
