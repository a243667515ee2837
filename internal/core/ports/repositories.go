package ports

import (
	"context"

	"github.com/samirrijal/globetrotter/internal/core/domain"
)

// CityRepository loads the reference cities.
type CityRepository interface {
	List(ctx context.Context) ([]domain.ReferenceCity, error)
}
