// Package scoring derives a categorical cognitive state from a synced
// audio/visual event.
package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithPoseTolerance sets the head-pose tolerance in degrees applied to all
// three rotational axes.
func WithPoseTolerance(degrees float64) Option {
	return func(s *Scorer) {
		if degrees > 0 {
			s.poseToleranceDeg = degrees
		}
	}
}

// WithEyeThresholds sets the eye-openness scores above which both eyes
// count as wide open and below which either eye counts as closing.
func WithEyeThresholds(high, low float64) Option {
	return func(s *Scorer) {
		if high > low && low >= 0 {
			s.eyeOpenHigh = high
			s.eyeOpenLow = low
		}
	}
}

// WithLoudnessThresholds sets the RMS amplitude above which audio counts
// as loud and below which it counts as quiet.
func WithLoudnessThresholds(loud, quiet float64) Option {
	return func(s *Scorer) {
		if loud > quiet && quiet >= 0 {
			s.rmsLoud = loud
			s.rmsQuiet = quiet
		}
	}
}

// WithZeroCrossingThreshold sets the zero-crossing rate above which audio
// counts as active.
func WithZeroCrossingThreshold(rate float64) Option {
	return func(s *Scorer) {
		if rate > 0 {
			s.zcrActive = rate
		}
	}
}
