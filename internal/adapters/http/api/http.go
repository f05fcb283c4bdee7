// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/attune/internal/domain/model"
)

// Dependencies required by the HTTP handlers. An interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	// Producer pushes; never block.
	PushVisual(sample model.VisualSample)
	PushAudio(sample model.AudioSample)

	// SeenAndRecord tracks ingest idempotency for requests that carry a
	// sample id.
	SeenAndRecord(ctx context.Context, id string) bool

	// Read operations.
	LatestState() (model.CognitiveState, bool)
	LatestEvent() (model.SyncedEvent, bool)
	GetStats() map[string]any
}

// Server wires HTTP routes for the fusion API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	samplesHandler *SamplesHandler
	stateHandler   *StateHandler
}

// NewServer creates an API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		samplesHandler: NewSamplesHandler(deps),
		stateHandler:   NewStateHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/state", MetricsMiddleware(s.stateHandler.HandleGetState, "state"))
	mux.HandleFunc("/v1/samples/visual", MetricsMiddleware(s.samplesHandler.HandlePostVisual, "samples_visual"))
	mux.HandleFunc("/v1/samples/audio", MetricsMiddleware(s.samplesHandler.HandlePostAudio, "samples_audio"))
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
