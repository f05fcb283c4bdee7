package feed

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/attune/pkg/logger"
)

// Stats accumulates submission counters for one run.
type Stats struct {
	VisualAccepted uint64
	AudioAccepted  uint64
	Duplicates     uint64
	Failures       uint64
	Duration       time.Duration
}

// Run drives both producers against the target service for the
// configured duration and reports what happened.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Named("feed")
	client := newHTTPClient(cfg.RequestTimeout)

	if err := client.checkHealth(ctx, cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	log.Info(ctx, "starting synthetic feed",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("duration", cfg.Duration.String()),
		logger.String("visualInterval", cfg.VisualInterval.String()),
		logger.String("audioInterval", cfg.AudioInterval.String()),
		logger.Int64("seed", cfg.Seed))

	start := time.Now()
	runCtx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var (
		visualAccepted atomic.Uint64
		audioAccepted  atomic.Uint64
		duplicates     atomic.Uint64
		failures       atomic.Uint64
		wg             sync.WaitGroup
	)

	record := func(accepted *atomic.Uint64, result string, err error) {
		switch result {
		case resultAccepted:
			accepted.Add(1)
		case resultDuplicate:
			duplicates.Add(1)
		default:
			if runCtx.Err() != nil {
				// The run deadline cut this request off mid-flight;
				// abandoned, not failed.
				return
			}
			failures.Add(1)
			if err != nil {
				log.Warn(runCtx, "sample submission failed", logger.Error(err))
			}
		}
	}

	wg.Add(2)

	go func() {
		defer wg.Done()
		gen := newGenerator(cfg.Seed, cfg.JitterMS, start)
		url := cfg.BaseURL + "/v1/samples/visual"
		ticker := time.NewTicker(cfg.VisualInterval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case now := <-ticker.C:
				result, err := client.postSample(runCtx, url, gen.visualAt(now))
				record(&visualAccepted, result, err)
			}
		}
	}()

	go func() {
		defer wg.Done()
		gen := newGenerator(cfg.Seed+1, cfg.JitterMS, start)
		url := cfg.BaseURL + "/v1/samples/audio"
		ticker := time.NewTicker(cfg.AudioInterval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case now := <-ticker.C:
				result, err := client.postSample(runCtx, url, gen.audioAt(now))
				record(&audioAccepted, result, err)
			}
		}
	}()

	wg.Wait()

	stats := &Stats{
		VisualAccepted: visualAccepted.Load(),
		AudioAccepted:  audioAccepted.Load(),
		Duplicates:     duplicates.Load(),
		Failures:       failures.Load(),
		Duration:       time.Since(start),
	}

	// Give the synchronizer a couple of reconcile periods, then show
	// where the state landed.
	time.Sleep(250 * time.Millisecond)
	if state, err := client.fetchState(ctx, cfg.BaseURL); err != nil {
		log.Warn(ctx, "failed to fetch final state", logger.Error(err))
	} else if state != nil {
		log.Info(ctx, "final cognitive state", logger.Any("state", state))
	} else {
		log.Info(ctx, "no cognitive state scored yet")
	}

	log.Info(ctx, "feed run complete",
		logger.Uint64("visualAccepted", stats.VisualAccepted),
		logger.Uint64("audioAccepted", stats.AudioAccepted),
		logger.Uint64("duplicates", stats.Duplicates),
		logger.Uint64("failures", stats.Failures),
		logger.String("duration", stats.Duration.Round(time.Millisecond).String()))

	return stats, nil
}
