package ports

import (
	"context"

	"github.com/samirrijal/globetrotter/internal/core/domain"
)

// RandomSource supplies uniform draws in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishJourneyEvent(ctx context.Context, event *domain.JourneyEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeJourneyEvents(ctx context.Context, handler func(ctx context.Context, event *domain.JourneyEvent) error) error
}

// JourneyObserver is notified, in order, after every journey mutation.
type JourneyObserver interface {
	JourneyChanged(ctx context.Context, event *domain.JourneyEvent)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
}

// DisplaySink receives readout updates keyed by element ID.
type DisplaySink interface {
	SetText(elementID, value string)
	SetStyleWidth(elementID string, percent float64)
}

// Renderer draws the globe scene.
type Renderer interface {
	MoveMarker(pos domain.Vector3)
	DrawPath(points []domain.Vector3)
	RenderFrame(frame domain.Frame)
}
