package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/ports"
	"github.com/samirrijal/globetrotter/internal/pkg/metrics"
)

// CityService resolves reference cities.
type CityService struct {
	cities ports.CityRepository
	cache  ports.CacheService

	mu     sync.Mutex
	loaded []domain.ReferenceCity
}

// NewCityService creates a new CityService. cache may be nil.
func NewCityService(cities ports.CityRepository, cache ports.CacheService) *CityService {
	return &CityService{cities: cities, cache: cache}
}

// List returns the reference cities. The repository is read once; the set is
// static for the life of the process.
func (s *CityService) List(ctx context.Context) ([]domain.ReferenceCity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded != nil {
		return s.loaded, nil
	}

	cities, err := s.cities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reference cities: %w", err)
	}
	s.loaded = cities
	return cities, nil
}

// Nearest returns the reference city closest to pos.
func (s *CityService) Nearest(ctx context.Context, pos domain.GeoPoint) (*domain.NearestCity, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "CityService.Nearest")
	defer span.End()
	span.SetAttributes(attribute.Float64("lat", pos.Lat), attribute.Float64("lon", pos.Lon))

	cacheKey := nearestCacheKey(pos)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var nc domain.NearestCity
			if err := json.Unmarshal(data, &nc); err == nil {
				metrics.CacheHits.WithLabelValues("nearest_city").Inc()
				return &nc, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("nearest_city").Inc()
	}

	cities, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	nc, err := domain.FindNearestCity(pos, cities)
	if err != nil {
		return nil, err
	}

	// Cities never change while running; 10 minutes keeps the keyspace small.
	if s.cache != nil {
		if data, err := json.Marshal(nc); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return &nc, nil
}

// nearestCacheKey keeps full precision: the cached value carries the distance
// from this exact point.
func nearestCacheKey(pos domain.GeoPoint) string {
	return "cities:nearest:" +
		strconv.FormatFloat(pos.Lat, 'g', -1, 64) + ":" +
		strconv.FormatFloat(pos.Lon, 'g', -1, 64)
}
