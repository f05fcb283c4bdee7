package api

import (
	"net/http"
)

// StateHandler serves the latest derived cognitive state.
type StateHandler struct {
	deps Dependencies
}

// NewStateHandler creates a new state handler.
func NewStateHandler(deps Dependencies) *StateHandler {
	return &StateHandler{deps: deps}
}

type stateResponse struct {
	TS         int64   `json:"ts_ms"`
	Engagement string  `json:"engagement"`
	Arousal    string  `json:"arousal"`
	Confidence float64 `json:"confidence"`
	// EventGapMS is the timestamp gap of the pair that produced this
	// state, useful for judging alignment quality.
	EventGapMS int64 `json:"event_gap_ms"`
}

// HandleGetState handles GET /v1/state. Returns 404 until the first pair
// has matched.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_state"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	state, ok := h.deps.LatestState()
	if !ok {
		writeError(w, http.StatusNotFound, "no_state", ErrNoState)
		return
	}

	resp := stateResponse{
		TS:         state.TS,
		Engagement: string(state.Engagement),
		Arousal:    string(state.Arousal),
		Confidence: state.Confidence,
	}
	if ev, ok := h.deps.LatestEvent(); ok {
		resp.EventGapMS = ev.Gap()
	}
	writeJSON(w, http.StatusOK, resp)
}
