package usecases

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/ports"
	"github.com/samirrijal/globetrotter/internal/pkg/metrics"
)

const tracerName = "github.com/samirrijal/globetrotter/internal/core/usecases"

const (
	minRunMiles  = 2.0
	runMilesSpan = 10.0
	maxLatDelta  = 5.0
)

// JourneyService owns the session's running journey. Every mutation runs to
// completion, observers included, before the next one starts.
type JourneyService struct {
	mu        sync.Mutex
	journey   *domain.RunningJourney
	sessionID string

	rng       ports.RandomSource
	cities    *CityService
	publisher ports.EventPublisher
	observers []ports.JourneyObserver
	now       func() time.Time
}

// NewJourneyService creates a journey seeded at seed. publisher may be nil.
func NewJourneyService(
	seed domain.GeoPoint,
	rng ports.RandomSource,
	cities *CityService,
	publisher ports.EventPublisher,
) *JourneyService {
	return &JourneyService{
		journey:   domain.NewRunningJourney(seed),
		sessionID: uuid.NewString(),
		rng:       rng,
		cities:    cities,
		publisher: publisher,
		now:       time.Now,
	}
}

// Observe registers o for every subsequent journey event.
func (s *JourneyService) Observe(o ports.JourneyObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// SessionID identifies this journey for its lifetime.
func (s *JourneyService) SessionID() string {
	return s.sessionID
}

// Start announces the initial state so observers can draw it.
func (s *JourneyService) Start(ctx context.Context) *domain.JourneyEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.emit(ctx, domain.EventJourneyStarted, nil)
}

// AddRun records one mock run: miles in [2, 12) and a latitude wobble in [-5, 5).
func (s *JourneyService) AddRun(ctx context.Context) *domain.JourneyEvent {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "JourneyService.AddRun")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	miles := minRunMiles + s.rng.Float64()*runMilesSpan
	latDelta := (s.rng.Float64() - 0.5) * 2 * maxLatDelta

	seg := s.journey.Record(miles, latDelta, s.now())

	metrics.RunsRecorded.Inc()
	metrics.MilesRecorded.Add(miles)
	metrics.JourneyTotalMiles.Set(s.journey.TotalMiles)
	span.SetAttributes(
		attribute.Float64("miles", miles),
		attribute.Int("run_count", s.journey.RunCount),
	)

	return s.emit(ctx, domain.EventRunRecorded, &seg)
}

// Reset puts the journey back at its seed.
func (s *JourneyService) Reset(ctx context.Context) *domain.JourneyEvent {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "JourneyService.Reset")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.journey.Reset()

	metrics.JourneyResets.Inc()
	metrics.JourneyTotalMiles.Set(0)

	return s.emit(ctx, domain.EventJourneyReset, nil)
}

// Snapshot returns the current journey with its derived readouts.
func (s *JourneyService) Snapshot(ctx context.Context) domain.JourneySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshot(ctx)
}

func (s *JourneyService) snapshot(ctx context.Context) domain.JourneySnapshot {
	snap := s.journey.Snapshot(s.sessionID)
	if s.cities != nil {
		nc, err := s.cities.Nearest(ctx, snap.CurrentPosition)
		if err != nil {
			slog.Warn("nearest city unavailable", "error", err)
		} else {
			snap.NearestCity = nc
		}
	}
	return snap
}

// emit must be called with s.mu held.
func (s *JourneyService) emit(ctx context.Context, typ domain.JourneyEventType, seg *domain.PathSegment) *domain.JourneyEvent {
	event := &domain.JourneyEvent{
		ID:       uuid.NewString(),
		Type:     typ,
		Time:     s.now(),
		Segment:  seg,
		Snapshot: s.snapshot(ctx),
	}

	for _, o := range s.observers {
		o.JourneyChanged(ctx, event)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishJourneyEvent(ctx, event); err != nil {
			slog.Warn("publish journey event failed", "type", typ, "error", err)
		}
	}

	return event
}
