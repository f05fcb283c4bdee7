// Package feed drives the ingest API with scripted synthetic producers,
// for demos and load checks against a running service.
package feed

import "time"

// Config controls a feed run.
type Config struct {
	// BaseURL of the target service, e.g. http://localhost:9090.
	BaseURL string

	// Duration of the whole run.
	Duration time.Duration

	// VisualInterval and AudioInterval set the producer cadences. They
	// deliberately differ by default: the two streams are independent
	// and the synchronizer has to reconcile the rates.
	VisualInterval time.Duration
	AudioInterval  time.Duration

	// JitterMS is the maximum random timestamp skew applied per sample.
	JitterMS int64

	// Seed makes a run reproducible.
	Seed int64

	// RequestTimeout bounds each HTTP call.
	RequestTimeout time.Duration
}

// DefaultConfig returns a config suitable for a local demo run.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:9090",
		Duration:       30 * time.Second,
		VisualInterval: 33 * time.Millisecond, // ~30 fps analyzer
		AudioInterval:  50 * time.Millisecond, // 20 windows/s analyzer
		JitterMS:       25,
		Seed:           1,
		RequestTimeout: 2 * time.Second,
	}
}
