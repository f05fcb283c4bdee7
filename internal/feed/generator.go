package feed

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// phase is one behavioral segment of the scripted scenario.
type phase int

const (
	phaseAttentive phase = iota
	phaseDrowsy
	phaseSpeaking
	phaseAbsent
)

func (p phase) String() string {
	switch p {
	case phaseAttentive:
		return "attentive"
	case phaseDrowsy:
		return "drowsy"
	case phaseSpeaking:
		return "speaking"
	case phaseAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// script cycles through the phases, each lasting phaseLength. The order
// walks the scorer through its interesting transitions: engaged, then
// eyes closing, then loud speech, then no face at all.
var script = []phase{phaseAttentive, phaseDrowsy, phaseSpeaking, phaseAbsent}

const phaseLength = 5 * time.Second

// visualRequest mirrors the visual ingest wire shape.
type visualRequest struct {
	SampleID     string  `json:"sample_id,omitempty"`
	TS           int64   `json:"ts_ms"`
	FaceDetected bool    `json:"face_detected"`
	Yaw          float64 `json:"yaw"`
	Pitch        float64 `json:"pitch"`
	Roll         float64 `json:"roll"`
	LeftEyeOpen  float64 `json:"left_eye_open"`
	RightEyeOpen float64 `json:"right_eye_open"`
}

// audioRequest mirrors the audio ingest wire shape.
type audioRequest struct {
	SampleID         string  `json:"sample_id,omitempty"`
	TS               int64   `json:"ts_ms"`
	RMS              float64 `json:"rms"`
	ZeroCrossingRate float64 `json:"zero_crossing_rate"`
}

// generator produces phase-appropriate samples along a simulated
// timeline. Not safe for concurrent use; the runner gives each producer
// its own generator.
type generator struct {
	rng      *rand.Rand
	jitterMS int64
	start    time.Time
}

func newGenerator(seed, jitterMS int64, start time.Time) *generator {
	return &generator{
		rng:      rand.New(rand.NewSource(seed)),
		jitterMS: jitterMS,
		start:    start,
	}
}

// phaseAt returns the scripted phase for a point in the run.
func (g *generator) phaseAt(now time.Time) phase {
	elapsed := now.Sub(g.start)
	idx := int(elapsed/phaseLength) % len(script)
	return script[idx]
}

// jittered returns now as unix milliseconds with random skew, so the
// two streams arrive slightly out of step like real analyzers do.
func (g *generator) jittered(now time.Time) int64 {
	ts := now.UnixMilli()
	if g.jitterMS > 0 {
		ts += g.rng.Int63n(2*g.jitterMS+1) - g.jitterMS
	}
	return ts
}

func (g *generator) visualAt(now time.Time) visualRequest {
	req := visualRequest{
		SampleID: uuid.NewString(),
		TS:       g.jittered(now),
	}

	switch g.phaseAt(now) {
	case phaseAttentive:
		req.FaceDetected = true
		req.Yaw = g.rng.Float64()*10 - 5
		req.Pitch = g.rng.Float64()*10 - 5
		req.Roll = g.rng.Float64()*6 - 3
		req.LeftEyeOpen = 0.8 + g.rng.Float64()*0.2
		req.RightEyeOpen = 0.8 + g.rng.Float64()*0.2
	case phaseDrowsy:
		req.FaceDetected = true
		req.Yaw = g.rng.Float64()*10 - 5
		req.Pitch = -20 + g.rng.Float64()*5 // head drooping
		req.Roll = g.rng.Float64()*6 - 3
		req.LeftEyeOpen = g.rng.Float64() * 0.25
		req.RightEyeOpen = g.rng.Float64() * 0.25
	case phaseSpeaking:
		req.FaceDetected = true
		req.Yaw = g.rng.Float64()*20 - 10
		req.Pitch = g.rng.Float64()*10 - 5
		req.Roll = g.rng.Float64()*6 - 3
		req.LeftEyeOpen = 0.7 + g.rng.Float64()*0.3
		req.RightEyeOpen = 0.7 + g.rng.Float64()*0.3
	case phaseAbsent:
		req.FaceDetected = false
	}

	return req
}

func (g *generator) audioAt(now time.Time) audioRequest {
	req := audioRequest{
		SampleID: uuid.NewString(),
		TS:       g.jittered(now),
	}

	switch g.phaseAt(now) {
	case phaseAttentive:
		req.RMS = 0.005 + g.rng.Float64()*0.01
		req.ZeroCrossingRate = 0.05 + g.rng.Float64()*0.05
	case phaseDrowsy:
		req.RMS = g.rng.Float64() * 0.005
		req.ZeroCrossingRate = g.rng.Float64() * 0.05
	case phaseSpeaking:
		req.RMS = 0.06 + g.rng.Float64()*0.06
		req.ZeroCrossingRate = 0.15 + g.rng.Float64()*0.2
	case phaseAbsent:
		req.RMS = g.rng.Float64() * 0.003 // room tone
		req.ZeroCrossingRate = g.rng.Float64() * 0.1
	}

	return req
}
