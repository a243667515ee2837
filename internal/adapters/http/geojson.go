package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/pkg/geospatial"
)

func orbPoint(p domain.GeoPoint) orb.Point {
	return orb.Point{geospatial.WrapLongitude(p.Lon), p.Lat}
}

// JourneyGeoJSON renders a snapshot as a FeatureCollection: the current
// position, the whole route as one LineString, and one LineString per run.
// Longitudes are wrapped to [-180, 180) as GeoJSON expects.
func JourneyGeoJSON(snap domain.JourneySnapshot) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	current := geojson.NewFeature(orbPoint(snap.CurrentPosition))
	current.Properties["kind"] = "current_position"
	current.Properties["total_miles"] = snap.TotalMiles
	current.Properties["run_count"] = snap.RunCount
	current.Properties["world_progress"] = snap.WorldProgress
	if snap.NearestCity != nil {
		current.Properties["nearest_city"] = snap.NearestCity.City.Name
	}
	fc.Append(current)

	if len(snap.Path) == 0 {
		return fc
	}

	route := make(orb.LineString, 0, len(snap.Path)+1)
	route = append(route, orbPoint(snap.Seed))
	for _, seg := range snap.Path {
		route = append(route, orbPoint(seg.End))
	}
	journey := geojson.NewFeature(route)
	journey.Properties["kind"] = "journey"
	journey.Properties["session_id"] = snap.SessionID
	fc.Append(journey)

	for i, seg := range snap.Path {
		f := geojson.NewFeature(orb.LineString{orbPoint(seg.Start), orbPoint(seg.End)})
		f.ID = seg.ID
		f.Properties["kind"] = "segment"
		f.Properties["index"] = i
		f.Properties["miles"] = seg.Miles
		f.Properties["recorded_at"] = seg.RecordedAt.UTC().Format(time.RFC3339Nano)
		fc.Append(f)
	}
	return fc
}

// JourneyPathHandler serves the journey as GeoJSON.
func JourneyPathHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := JourneyGeoJSON(deps.Journeys.Snapshot(c.UserContext())).MarshalJSON()
		if err != nil {
			return errInternal(c, "encode geojson")
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.Send(data)
	}
}
