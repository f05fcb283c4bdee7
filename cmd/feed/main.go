package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/attune/internal/feed"
	"github.com/okian/attune/pkg/logger"
)

func main() {
	defaults := feed.DefaultConfig()

	var (
		baseURL        = flag.String("url", defaults.BaseURL, "Base URL of the service")
		duration       = flag.Duration("duration", defaults.Duration, "How long to run the feed")
		visualInterval = flag.Duration("visual-interval", defaults.VisualInterval, "Delay between visual samples")
		audioInterval  = flag.Duration("audio-interval", defaults.AudioInterval, "Delay between audio samples")
		jitterMS       = flag.Int64("jitter", defaults.JitterMS, "Max timestamp skew per sample in ms")
		seed           = flag.Int64("seed", defaults.Seed, "Random seed for reproducible runs")
		timeout        = flag.Duration("timeout", defaults.RequestTimeout, "HTTP request timeout")
	)
	flag.Parse()

	if err := logger.Init(os.Stdout); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := &feed.Config{
		BaseURL:        *baseURL,
		Duration:       *duration,
		VisualInterval: *visualInterval,
		AudioInterval:  *audioInterval,
		JitterMS:       *jitterMS,
		Seed:           *seed,
		RequestTimeout: *timeout,
	}

	start := time.Now()
	if _, err := feed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "feed run failed",
			logger.Error(err), logger.String("elapsed", time.Since(start).String()))
		os.Exit(1)
	}
}
