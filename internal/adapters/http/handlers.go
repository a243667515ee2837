package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/usecases"
)

var validate = validator.New()

// coordQuery is shared by every endpoint taking a lat/lon pair. Longitude
// accepts either the [-180, 180) or the [0, 360) convention.
type coordQuery struct {
	Lat *float64 `query:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `query:"lon" validate:"required,gte=-180,lte=360"`
}

type projectQuery struct {
	Lat    *float64 `query:"lat" validate:"required,gte=-90,lte=90"`
	Lon    *float64 `query:"lon" validate:"required,gte=-180,lte=360"`
	Radius *float64 `query:"radius" validate:"omitempty,gt=0,lte=1000"`
}

// AnimationState reports the globe loop.
type AnimationState struct {
	Running  bool    `json:"running"`
	Rotation float64 `json:"rotation"`
}

func animationState(a *usecases.AnimationLoop) AnimationState {
	return AnimationState{Running: a.Running(), Rotation: a.Rotation()}
}

// AddRunHandler records one mock run and returns the resulting event.
func AddRunHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := deps.Journeys.AddRun(c.UserContext())
		LoggerFromCtx(c.UserContext()).Info("run recorded",
			"miles", event.Segment.Miles,
			"total_miles", event.Snapshot.TotalMiles,
			"run_count", event.Snapshot.RunCount,
		)
		return c.Status(fiber.StatusCreated).JSON(event)
	}
}

// ResetJourneyHandler sends the journey back to its seed.
func ResetJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event := deps.Journeys.Reset(c.UserContext())
		LoggerFromCtx(c.UserContext()).Info("journey reset")
		return c.JSON(event)
	}
}

// GetJourneyHandler returns the current journey snapshot.
func GetJourneyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.JSON(deps.Journeys.Snapshot(c.UserContext()))
	}
}

// ListSegmentsHandler pages through the journey's path, oldest first.
func ListSegmentsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		snap := deps.Journeys.Snapshot(c.UserContext())

		pg := pageFromQuery(c, len(snap.Path))
		start, end := pg.Bounds()

		setLinkHeaders(c, pg)
		c.Set(fiber.HeaderCacheControl, "no-cache")
		return c.JSON(Page{Data: snap.Path[start:end], Pagination: pg})
	}
}

// ToggleAnimationHandler pauses or resumes the globe rotation.
func ToggleAnimationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		running := deps.Animation.Toggle()
		LoggerFromCtx(c.UserContext()).Info("animation toggled", "running", running)
		return c.JSON(animationState(deps.Animation))
	}
}

// AnimationHandler returns the loop state.
func AnimationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")
		return c.JSON(animationState(deps.Animation))
	}
}

// ListCitiesHandler returns the reference cities in lookup order.
func ListCitiesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cities, err := deps.Cities.List(c.UserContext())
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		return c.JSON(cities)
	}
}

// NearestCityHandler resolves the reference city closest to lat/lon.
func NearestCityHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q coordQuery
		if err := c.QueryParser(&q); err != nil {
			return errBadRequest(c, "lat and lon must be numbers")
		}
		if err := validate.Struct(q); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		nc, err := deps.Cities.Nearest(c.UserContext(), domain.GeoPoint{Lat: *q.Lat, Lon: *q.Lon})
		if err != nil {
			return errFromDomain(c, err)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=600")
		return c.JSON(nc)
	}
}

// ProjectHandler converts lat/lon to a point on a sphere of the given radius.
func ProjectHandler(_ *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var q projectQuery
		if err := c.QueryParser(&q); err != nil {
			return errBadRequest(c, "lat, lon and radius must be numbers")
		}
		if err := validate.Struct(q); err != nil {
			return errBadRequest(c, validationMessage(err))
		}

		radius := usecases.GlobeRadius
		if q.Radius != nil {
			radius = *q.Radius
		}

		c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
		return c.JSON(usecases.ProjectPoint(domain.GeoPoint{Lat: *q.Lat, Lon: *q.Lon}, radius))
	}
}

// NotFoundHandler answers any unmatched route.
func NotFoundHandler(c *fiber.Ctx) error {
	return errNotFound(c, "no route for "+c.Method()+" "+c.Path())
}
