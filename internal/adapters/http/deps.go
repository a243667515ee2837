package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/globetrotter/internal/adapters/postgres"
	"github.com/samirrijal/globetrotter/internal/adapters/valkey"
	"github.com/samirrijal/globetrotter/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. NATS, DB and Cache
// are optional and may be nil.
type Dependencies struct {
	Journeys  *usecases.JourneyService
	Cities    *usecases.CityService
	Animation *usecases.AnimationLoop
	Hub       *Hub
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
