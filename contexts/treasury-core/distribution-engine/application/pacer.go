package application

import (
	"context"
	"time"
)

// IntervalPacer waits a fixed interval between consecutive gateway calls.
// A cancelled context stops the wait, not the batch: distributions run to
// completion once started.
type IntervalPacer struct {
	Interval time.Duration
}

func (p IntervalPacer) Pace(ctx context.Context) {
	if p.Interval <= 0 {
		return
	}
	timer := time.NewTimer(p.Interval)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

// NopPacer is for tests and memory-mode wiring.
type NopPacer struct{}

func (NopPacer) Pace(context.Context) {}
