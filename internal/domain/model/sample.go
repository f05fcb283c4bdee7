// Package model contains domain models passed between layers.
package model

// VisualFeatures holds the output of the external face analyzer for one
// frame. Angles are in degrees, eye-openness scores in [0, 1].
type VisualFeatures struct {
	// FaceDetected is false when the analyzer found no face; all other
	// fields are meaningless in that case and scoring skips them.
	FaceDetected bool
	Yaw          float64
	Pitch        float64
	Roll         float64
	LeftEyeOpen  float64
	RightEyeOpen float64
}

// AudioFeatures holds the output of the external audio analyzer for one
// PCM window. Producers compute these over every window, silence included.
type AudioFeatures struct {
	// RMS is the root-mean-square amplitude, normalized to [0, 1].
	RMS float64
	// ZeroCrossingRate is the fraction of adjacent sample pairs that
	// cross zero, in [0, 1].
	ZeroCrossingRate float64
}

// VisualSample is one timestamped visual feature sample. Immutable once
// created; the synchronizer reads only TS.
type VisualSample struct {
	// TS is the capture timestamp in Unix milliseconds.
	TS       int64
	Features VisualFeatures
}

// AudioSample is one timestamped audio feature sample. Immutable once
// created; the synchronizer reads only TS.
type AudioSample struct {
	// TS is the capture timestamp in Unix milliseconds.
	TS       int64
	Features AudioFeatures
}

// Timestamp returns the sample's capture time in Unix milliseconds.
func (s VisualSample) Timestamp() int64 { return s.TS }

// Timestamp returns the sample's capture time in Unix milliseconds.
func (s AudioSample) Timestamp() int64 { return s.TS }
