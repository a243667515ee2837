package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/globetrotter/internal/adapters/nats"
	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/pkg/config"
	"github.com/samirrijal/globetrotter/internal/pkg/logging"
	"github.com/samirrijal/globetrotter/internal/pkg/metrics"
)

// eventlog tails the journey event stream and writes one structured log line
// per event.
func main() {
	cfg, err := config.Load("globetrotter-eventlog")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format, cfg.Telemetry.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	durable := "eventlog"
	if len(os.Args) > 1 {
		durable = os.Args[1]
	}

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, durable)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	err = sub.SubscribeJourneyEvents(ctx, func(_ context.Context, event *domain.JourneyEvent) error {
		attrs := []any{
			"event_id", event.ID,
			"type", event.Type,
			"session_id", event.Snapshot.SessionID,
			"run_count", event.Snapshot.RunCount,
			"total_miles", event.Snapshot.TotalMiles,
			"lat", event.Snapshot.CurrentPosition.Lat,
			"lon", event.Snapshot.CurrentPosition.Lon,
		}
		if event.Segment != nil {
			attrs = append(attrs, "miles", event.Segment.Miles)
		}
		if event.Snapshot.NearestCity != nil {
			attrs = append(attrs, "nearest_city", event.Snapshot.NearestCity.City.Name)
		}
		slog.Info("journey event", attrs...)
		metrics.EventsConsumed.WithLabelValues(string(event.Type)).Inc()
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("event log started", "stream", natsadapter.StreamName, "durable", durable)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutting down event log", "signal", sig.String())
}
