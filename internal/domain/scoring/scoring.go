// Package scoring derives a categorical cognitive state from a synced
// audio/visual event.
//
// The scorer is an explicit deterministic heuristic, not a learned model:
// identical inputs always yield identical outputs.
package scoring

import (
	"github.com/okian/attune/internal/domain/model"
)

// Default thresholds for the rule cascade.
const (
	defaultPoseToleranceDeg = 15.0
	defaultEyeOpenHigh      = 0.7
	defaultEyeOpenLow       = 0.3
	defaultRMSLoud          = 0.05
	defaultRMSQuiet         = 0.01
	defaultZCRActive        = 0.2
)

// Confidence adjustments applied by individual rules.
const (
	baseConfidence    = 0.5
	poseDelta         = 0.10
	eyesOpenDelta     = 0.15
	eyesArousalDelta  = 0.05
	eyesClosedDelta   = 0.10
	loudDelta         = 0.10
	quietDelta        = 0.05
	zeroCrossingDelta = 0.05
)

// Scorer maps one synced event to a cognitive state. The zero value is not
// usable; construct with New.
type Scorer struct {
	poseToleranceDeg float64
	eyeOpenHigh      float64
	eyeOpenLow       float64
	rmsLoud          float64
	rmsQuiet         float64
	zcrActive        float64
}

// New creates a scorer with default thresholds, adjusted by opts.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		poseToleranceDeg: defaultPoseToleranceDeg,
		eyeOpenHigh:      defaultEyeOpenHigh,
		eyeOpenLow:       defaultEyeOpenLow,
		rmsLoud:          defaultRMSLoud,
		rmsQuiet:         defaultRMSQuiet,
		zcrActive:        defaultZCRActive,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score derives a cognitive state from ev. Visual rules are skipped when no
// face was detected; audio rules always apply. Confidence is clamped to
// [0, 1] as the final step.
func (s *Scorer) Score(ev model.SyncedEvent) model.CognitiveState {
	state := model.CognitiveState{
		TS:         ev.TS,
		Engagement: model.EngagementNeutral,
		Arousal:    model.ArousalCalm,
		Confidence: baseConfidence,
	}

	if ev.Visual.Features.FaceDetected {
		s.applyVisual(ev.Visual.Features, &state)
	}
	s.applyAudio(ev.Audio.Features, &state)

	state.Confidence = clamp01(state.Confidence)
	return state
}

// applyVisual evaluates head pose first, then eye openness. The eye rule
// runs after the pose rule and may override its engagement value.
func (s *Scorer) applyVisual(f model.VisualFeatures, state *model.CognitiveState) {
	if abs(f.Yaw) <= s.poseToleranceDeg && abs(f.Pitch) <= s.poseToleranceDeg && abs(f.Roll) <= s.poseToleranceDeg {
		state.Engagement = model.EngagementEngaged
		state.Confidence += poseDelta
	} else {
		state.Engagement = model.EngagementDisengaged
		state.Confidence -= poseDelta
	}

	switch {
	case f.LeftEyeOpen > s.eyeOpenHigh && f.RightEyeOpen > s.eyeOpenHigh:
		if state.Engagement == model.EngagementEngaged {
			state.Engagement = model.EngagementHighlyEngaged
			state.Confidence += eyesOpenDelta
		}
		state.Arousal = model.ArousalModerate
		state.Confidence += eyesArousalDelta
	case f.LeftEyeOpen < s.eyeOpenLow || f.RightEyeOpen < s.eyeOpenLow:
		state.Engagement = model.EngagementDisengaged
		state.Arousal = model.ArousalCalm
		state.Confidence -= eyesClosedDelta
	}
}

// applyAudio evaluates loudness, then zero-crossing activity.
func (s *Scorer) applyAudio(f model.AudioFeatures, state *model.CognitiveState) {
	switch {
	case f.RMS > s.rmsLoud:
		state.Arousal = model.ArousalModerate
		if state.Engagement == model.EngagementEngaged || state.Engagement == model.EngagementHighlyEngaged {
			state.Arousal = model.ArousalHigh
		}
		state.Confidence += loudDelta
	case f.RMS < s.rmsQuiet:
		state.Arousal = model.ArousalCalm
		if state.Engagement == model.EngagementHighlyEngaged {
			state.Engagement = model.EngagementDeeplyEngaged
		}
		state.Confidence += quietDelta
	}

	if f.ZeroCrossingRate > s.zcrActive && state.Arousal == model.ArousalCalm {
		state.Arousal = model.ArousalModerate
		state.Confidence += zeroCrossingDelta
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
