package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/attune/internal/domain/model"
)

// SamplesHandler handles producer sample pushes.
type SamplesHandler struct {
	deps Dependencies
}

// NewSamplesHandler creates a new samples handler.
func NewSamplesHandler(deps Dependencies) *SamplesHandler {
	return &SamplesHandler{deps: deps}
}

// visualSampleRequest mirrors the POST /v1/samples/visual body.
type visualSampleRequest struct {
	// SampleID is optional; when present, retried pushes are
	// acknowledged as duplicates instead of re-entering the buffer.
	SampleID     string  `json:"sample_id,omitempty"`
	TS           int64   `json:"ts_ms"`
	FaceDetected bool    `json:"face_detected"`
	Yaw          float64 `json:"yaw"`
	Pitch        float64 `json:"pitch"`
	Roll         float64 `json:"roll"`
	LeftEyeOpen  float64 `json:"left_eye_open"`
	RightEyeOpen float64 `json:"right_eye_open"`
}

func (r visualSampleRequest) validate() error {
	if r.TS <= 0 {
		return errors.New("missing or non-positive ts_ms")
	}
	if r.FaceDetected {
		if r.LeftEyeOpen < 0 || r.LeftEyeOpen > 1 || r.RightEyeOpen < 0 || r.RightEyeOpen > 1 {
			return fmt.Errorf("eye openness must be in [0,1], got (%v, %v)", r.LeftEyeOpen, r.RightEyeOpen)
		}
	}
	return nil
}

func (r visualSampleRequest) sample() model.VisualSample {
	return model.VisualSample{
		TS: r.TS,
		Features: model.VisualFeatures{
			FaceDetected: r.FaceDetected,
			Yaw:          r.Yaw,
			Pitch:        r.Pitch,
			Roll:         r.Roll,
			LeftEyeOpen:  r.LeftEyeOpen,
			RightEyeOpen: r.RightEyeOpen,
		},
	}
}

// audioSampleRequest mirrors the POST /v1/samples/audio body.
type audioSampleRequest struct {
	SampleID         string  `json:"sample_id,omitempty"`
	TS               int64   `json:"ts_ms"`
	RMS              float64 `json:"rms"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
}

func (r audioSampleRequest) validate() error {
	if r.TS <= 0 {
		return errors.New("missing or non-positive ts_ms")
	}
	if r.RMS < 0 {
		return errors.New("rms must not be negative")
	}
	if r.ZeroCrossingRate < 0 || r.ZeroCrossingRate > 1 {
		return fmt.Errorf("zero_crossing_rate must be in [0,1], got %v", r.ZeroCrossingRate)
	}
	return nil
}

func (r audioSampleRequest) sample() model.AudioSample {
	return model.AudioSample{
		TS: r.TS,
		Features: model.AudioFeatures{
			RMS:              r.RMS,
			ZeroCrossingRate: r.ZeroCrossingRate,
		},
	}
}

// HandlePostVisual handles POST /v1/samples/visual.
func (h *SamplesHandler) HandlePostVisual(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_visual_sample"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req visualSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	if req.SampleID != "" && h.deps.SeenAndRecord(r.Context(), req.SampleID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	// Push never blocks and never fails; overflow evicts the oldest
	// pending sample instead of rejecting this one.
	h.deps.PushVisual(req.sample())
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}

// HandlePostAudio handles POST /v1/samples/audio.
func (h *SamplesHandler) HandlePostAudio(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_audio_sample"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req audioSampleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}

	if req.SampleID != "" && h.deps.SeenAndRecord(r.Context(), req.SampleID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	h.deps.PushAudio(req.sample())
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
