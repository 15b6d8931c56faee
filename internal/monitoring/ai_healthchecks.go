package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/metrics"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

type HealthChecker interface {
	Healthy(ctx context.Context) bool
}

// MonitorLLMHealth checks the LLM endpoint once immediately and then on every
// tick, storing the result in healthy until ctx is done.
func MonitorLLMHealth(ctx context.Context, clock clockwork.Clock, checker HealthChecker, interval time.Duration, healthy *atomic.Bool) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	check := func() {
		checkCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()

		isHealthy := checker.Healthy(checkCtx)
		if was := healthy.Swap(isHealthy); was != isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] LLM endpoint is healthy")
			} else {
				slog.Warn("[HealthCheck] LLM endpoint is unhealthy")
			}
		}
		if isHealthy {
			metrics.LLMHealthy.Set(1)
		} else {
			metrics.LLMHealthy.Set(0)
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			check()
		}
	}
}
