package core

import (
	"context"
	"fmt"
	"time"
)

// GateConfig controls how often a readiness gate polls its condition.
type GateConfig struct {
	// Delay before the second poll. The first poll happens immediately.
	Interval time.Duration
	// Upper bound for the delay between polls.
	MaxInterval time.Duration
	// Factor applied to the delay after every failed poll. Values below 1 keep it fixed.
	Multiplier float64
	// Give up after this long. Zero means wait until ctx is done.
	Timeout time.Duration
}

// DefaultGateConfig polls every 100ms at first, backing off up to one second.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Interval:    100 * time.Millisecond,
		MaxInterval: time.Second,
		Multiplier:  2,
		Timeout:     30 * time.Second,
	}
}

// WaitUntil polls ready until it reports true, then returns nil. It returns
// ErrSceneNotReady when the timeout expires and ctx.Err() when ctx is cancelled.
func WaitUntil(ctx context.Context, cfg GateConfig, ready func() bool) error {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultGateConfig().Interval
	}
	if cfg.MaxInterval < cfg.Interval {
		cfg.MaxInterval = cfg.Interval
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	delay := cfg.Interval
	for attempt := 1; ; attempt++ {
		if ready() {
			LogDebug("gate open after %d poll(s)", attempt)
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			if cfg.Timeout > 0 && ctx.Err() == context.DeadlineExceeded {
				return fmt.Errorf("%w: gave up after %d poll(s)", ErrSceneNotReady, attempt)
			}
			return ctx.Err()
		case <-timer.C:
		}

		if cfg.Multiplier > 1 {
			delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxInterval)
		}
	}
}
