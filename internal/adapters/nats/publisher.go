package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/pkg/metrics"
)

const (
	// StreamName is the JetStream stream holding journey events.
	StreamName = "JOURNEY_EVENTS"
	// SubjectPrefix is followed by the event type, e.g. globetrotter.journey.run_recorded.
	SubjectPrefix = "globetrotter.journey."
	// SubjectAll matches every journey event.
	SubjectAll = SubjectPrefix + ">"
)

// Subject returns the subject an event of type t is published on.
func Subject(t domain.JourneyEventType) string {
	return SubjectPrefix + string(t)
}

// StreamConfig describes the journey event stream. Events are informational,
// so a day of history is enough for late subscribers.
func StreamConfig() nats.StreamConfig {
	return nats.StreamConfig{
		Name:       StreamName,
		Subjects:   []string{SubjectAll},
		Retention:  nats.LimitsPolicy,
		MaxAge:     24 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: 2 * time.Minute,
	}
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the journey stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := StreamConfig()
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist; try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishJourneyEvent publishes event as JSON. The event ID doubles as the
// JetStream message ID so retries are de-duplicated.
func (p *Publisher) PublishJourneyEvent(ctx context.Context, event *domain.JourneyEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal journey event: %w", err)
	}
	_, err = p.js.Publish(Subject(event.Type), data, nats.Context(ctx), nats.MsgId(event.ID))
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(event.Type), "error").Inc()
		return err
	}
	metrics.EventsPublished.WithLabelValues(string(event.Type), "ok").Inc()
	return nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("globetrotter"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
