package static

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/globetrotter/internal/core/domain"
)

// CityRepo implements ports.CityRepository over a fixed, in-memory list.
type CityRepo struct {
	cities []domain.ReferenceCity
}

// NewBuiltinCityRepo serves the ten default reference cities.
func NewBuiltinCityRepo() *CityRepo {
	return &CityRepo{cities: domain.DefaultCities()}
}

// NewCityRepo serves cities in the given order.
func NewCityRepo(cities []domain.ReferenceCity) *CityRepo {
	return &CityRepo{cities: cities}
}

// List returns a copy of the cities so callers cannot reorder the source.
func (r *CityRepo) List(_ context.Context) ([]domain.ReferenceCity, error) {
	out := make([]domain.ReferenceCity, len(r.cities))
	copy(out, r.cities)
	return out, nil
}

type cityFile struct {
	Cities []struct {
		Name string   `yaml:"name"`
		Lat  *float64 `yaml:"lat"`
		Lon  *float64 `yaml:"lon"`
	} `yaml:"cities"`
}

// LoadCityFile reads a YAML document of the form
//
//	cities:
//	  - name: New York
//	    lat: 40.7128
//	    lon: -74.0060
func LoadCityFile(path string) (*CityRepo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read city file: %w", err)
	}
	cities, err := ParseCities(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewCityRepo(cities), nil
}

// ParseCities decodes and checks a YAML city list.
func ParseCities(data []byte) ([]domain.ReferenceCity, error) {
	var f cityFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse city file: %w", err)
	}
	if len(f.Cities) == 0 {
		return nil, fmt.Errorf("%w: no cities defined", domain.ErrInvalidInput)
	}

	cities := make([]domain.ReferenceCity, 0, len(f.Cities))
	for i, c := range f.Cities {
		switch {
		case c.Name == "":
			return nil, fmt.Errorf("%w: city %d has no name", domain.ErrInvalidInput, i)
		case c.Lat == nil || c.Lon == nil:
			return nil, fmt.Errorf("%w: city %q is missing coordinates", domain.ErrInvalidInput, c.Name)
		case *c.Lat < -90 || *c.Lat > 90:
			return nil, fmt.Errorf("%w: city %q latitude %v out of range", domain.ErrInvalidInput, c.Name, *c.Lat)
		}
		cities = append(cities, domain.ReferenceCity{
			Name:     c.Name,
			Position: domain.GeoPoint{Lat: *c.Lat, Lon: *c.Lon},
		})
	}
	return cities, nil
}
