package model

// SyncedEvent pairs one visual and one audio sample judged temporally
// coincident. Created only by the synchronizer and never buffered; it is
// handed to consumers and dropped.
type SyncedEvent struct {
	// TS is the mean of the two source timestamps in Unix milliseconds.
	// Integer division truncates, so an odd sum rounds toward zero.
	TS     int64        `json:"ts_ms"`
	Visual VisualSample `json:"-"`
	Audio  AudioSample  `json:"-"`
}

// Gap returns the absolute timestamp difference between the two sides in
// milliseconds.
func (e SyncedEvent) Gap() int64 {
	d := e.Visual.TS - e.Audio.TS
	if d < 0 {
		return -d
	}
	return d
}

// EngagementLevel is the coarse engagement estimate of a cognitive state.
type EngagementLevel string

// Engagement levels, from least to most engaged.
const (
	EngagementDisengaged    EngagementLevel = "disengaged"
	EngagementNeutral       EngagementLevel = "neutral"
	EngagementEngaged       EngagementLevel = "engaged"
	EngagementHighlyEngaged EngagementLevel = "highly_engaged"
	EngagementDeeplyEngaged EngagementLevel = "deeply_engaged"
)

// ArousalLevel is the coarse arousal estimate of a cognitive state.
type ArousalLevel string

// Arousal levels, from least to most aroused.
const (
	ArousalCalm     ArousalLevel = "calm"
	ArousalModerate ArousalLevel = "moderate"
	ArousalHigh     ArousalLevel = "high"
)

// CognitiveState is the categorical state derived from one synced event.
// Derivation is stateless: no memory of prior states.
type CognitiveState struct {
	// TS is copied from the triggering event, in Unix milliseconds.
	TS         int64           `json:"ts_ms"`
	Engagement EngagementLevel `json:"engagement"`
	Arousal    ArousalLevel    `json:"arousal"`
	// Confidence is always in [0, 1].
	Confidence float64 `json:"confidence"`
}
