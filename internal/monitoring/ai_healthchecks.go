package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15

// HealthChecker is a remote model endpoint that can report its own health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorSummarizerHealth probes the summarization endpoint every
// HEALTHCHECK_TIMER seconds until ctx is done.
func MonitorSummarizerHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool) {
	monitor(ctx, "Summarizer", checker, healthy, time.Second*HEALTHCHECK_TIMER)
}

func monitor(ctx context.Context, name string, checker HealthChecker, healthy *atomic.Bool, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	probe := func() {
		isHealthy := checker.HealthCheck(ctx)
		if healthy.Swap(isHealthy) != isHealthy {
			slog.Info("[HealthCheck] Status changed",
				slog.String("component", name),
				slog.Bool("healthy", isHealthy))
		}
		if !isHealthy {
			slog.Warn("[HealthCheck] " + name + " is unhealthy")
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
