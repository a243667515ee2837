package usecases

import (
	"context"
	"math"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/ports"
	"github.com/samirrijal/globetrotter/internal/pkg/geospatial"
)

// GlobeRadius is the radius of the rendered globe in scene units.
const GlobeRadius = 1.0

// SceneService keeps the rendered marker and path in step with the journey.
type SceneService struct {
	renderer  ports.Renderer
	animation *AnimationLoop
}

// NewSceneService creates a new SceneService. animation may be nil, in which
// case no rotation transition is requested.
func NewSceneService(renderer ports.Renderer, animation *AnimationLoop) *SceneService {
	return &SceneService{renderer: renderer, animation: animation}
}

// JourneyChanged implements ports.JourneyObserver.
func (s *SceneService) JourneyChanged(_ context.Context, event *domain.JourneyEvent) {
	snap := event.Snapshot
	marker := ProjectPoint(snap.CurrentPosition, GlobeRadius)

	s.renderer.DrawPath(PathPoints(snap, GlobeRadius))
	s.renderer.MoveMarker(marker)

	if s.animation != nil {
		s.animation.SetMarker(marker)
		if event.Type == domain.EventRunRecorded {
			s.animation.TransitionTo(snap.CurrentPosition.Lon * math.Pi / 180)
		}
	}
}

// ProjectPoint maps p onto a sphere of the given radius.
func ProjectPoint(p domain.GeoPoint, radius float64) domain.Vector3 {
	x, y, z := geospatial.Project(p.Lat, p.Lon, radius)
	return domain.Vector3{X: x, Y: y, Z: z}
}

// PathPoints returns the polyline for a journey: the seed followed by the end
// of every segment. An empty journey has no line.
func PathPoints(snap domain.JourneySnapshot, radius float64) []domain.Vector3 {
	if len(snap.Path) == 0 {
		return nil
	}
	points := make([]domain.Vector3, 0, len(snap.Path)+1)
	points = append(points, ProjectPoint(snap.Seed, radius))
	for _, seg := range snap.Path {
		points = append(points, ProjectPoint(seg.End, radius))
	}
	return points
}
