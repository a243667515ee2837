package domain

import (
	"fmt"

	"github.com/samirrijal/globetrotter/internal/pkg/geospatial"
)

// DefaultCities returns the builtin reference cities. The first entry is the
// default starting point of a journey.
func DefaultCities() []ReferenceCity {
	return []ReferenceCity{
		{Name: "New York", Position: GeoPoint{Lat: 40.7128, Lon: -74.0060}},
		{Name: "London", Position: GeoPoint{Lat: 51.5074, Lon: -0.1278}},
		{Name: "Paris", Position: GeoPoint{Lat: 48.8566, Lon: 2.3522}},
		{Name: "Moscow", Position: GeoPoint{Lat: 55.7558, Lon: 37.6173}},
		{Name: "Beijing", Position: GeoPoint{Lat: 39.9042, Lon: 116.4074}},
		{Name: "Tokyo", Position: GeoPoint{Lat: 35.6762, Lon: 139.6503}},
		{Name: "Sydney", Position: GeoPoint{Lat: -33.8688, Lon: 151.2093}},
		{Name: "Los Angeles", Position: GeoPoint{Lat: 34.0522, Lon: -118.2437}},
		{Name: "Chicago", Position: GeoPoint{Lat: 41.8781, Lon: -87.6298}},
		{Name: "Miami", Position: GeoPoint{Lat: 25.7617, Lon: -80.1918}},
	}
}

// FindNearestCity returns the city closest to pos by great-circle distance.
// Ties go to the earliest city in the list.
func FindNearestCity(pos GeoPoint, cities []ReferenceCity) (NearestCity, error) {
	if len(cities) == 0 {
		return NearestCity{}, fmt.Errorf("nearest city: empty city list: %w", ErrInvalidInput)
	}

	first := cities[0]
	best := NearestCity{
		City:          first,
		DistanceMiles: geospatial.Haversine(pos.Lat, pos.Lon, first.Position.Lat, first.Position.Lon),
	}
	for _, c := range cities[1:] {
		d := geospatial.Haversine(pos.Lat, pos.Lon, c.Position.Lat, c.Position.Lon)
		if d < best.DistanceMiles {
			best = NearestCity{City: c, DistanceMiles: d}
		}
	}
	return best, nil
}
