// Package config defines service configuration and loading.
//
// Conventions follow the rest of the codebase: defaults come from New,
// Load layers an optional YAML file and ATTUNE_-prefixed environment
// variables on top, and validation fails fast.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`

	// SyncToleranceMS is the match window in milliseconds; the
	// reconciliation period is half of it.
	SyncToleranceMS int `koanf:"sync_tolerance_ms"`

	// BufferCapacity bounds each stream buffer.
	BufferCapacity int `koanf:"buffer_capacity"`

	// DedupeSize bounds the ingest idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// Scorer thresholds.
	PoseToleranceDeg float64 `koanf:"pose_tolerance_deg"`
	EyeOpenHigh      float64 `koanf:"eye_open_high"`
	EyeOpenLow       float64 `koanf:"eye_open_low"`
	RMSLoud          float64 `koanf:"rms_loud"`
	RMSQuiet         float64 `koanf:"rms_quiet"`
	ZCRActive        float64 `koanf:"zcr_active"`

	// StreamSendBuffer is the per-client websocket send buffer; slow
	// clients drop messages beyond it.
	StreamSendBuffer int `koanf:"stream_send_buffer"`
}

// New returns the configuration defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9090",
		SyncToleranceMS:  100,
		BufferCapacity:   5,
		DedupeSize:       10_000,
		PoseToleranceDeg: 15,
		EyeOpenHigh:      0.7,
		EyeOpenLow:       0.3,
		RMSLoud:          0.05,
		RMSQuiet:         0.01,
		ZCRActive:        0.2,
		StreamSendBuffer: 32,
	}
}
