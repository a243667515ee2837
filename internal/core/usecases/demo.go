package usecases

import (
	"context"
	"log/slog"
	"time"
)

// RunDemo records runs mock runs, the first after delay and the rest every
// interval, so a fresh session has something on the globe.
func RunDemo(ctx context.Context, journeys *JourneyService, runs int, delay, interval time.Duration) {
	if runs <= 0 {
		return
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for i := 0; i < runs; i++ {
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}

		event := journeys.AddRun(ctx)
		slog.Info("demo run recorded",
			"run", i+1,
			"miles", event.Segment.Miles,
			"total_miles", event.Snapshot.TotalMiles,
		)
		timer.Reset(interval)
	}
}
