package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/usecases"
)

// buildSchema creates the GraphQL schema wired to our services. Field names
// follow the JSON tags so graphql-go's default resolver finds them.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	vector3Type := graphql.NewObject(graphql.ObjectConfig{
		Name: "Vector3",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
			"z": &graphql.Field{Type: graphql.Float},
		},
	})

	cityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "City",
		Fields: graphql.Fields{
			"name":     &graphql.Field{Type: graphql.String},
			"position": &graphql.Field{Type: geoPointType},
		},
	})

	nearestCityType := graphql.NewObject(graphql.ObjectConfig{
		Name: "NearestCity",
		Fields: graphql.Fields{
			"city":           &graphql.Field{Type: cityType},
			"distance_miles": &graphql.Field{Type: graphql.Float},
		},
	})

	segmentType := graphql.NewObject(graphql.ObjectConfig{
		Name: "PathSegment",
		Fields: graphql.Fields{
			"id":          &graphql.Field{Type: graphql.String},
			"start":       &graphql.Field{Type: geoPointType},
			"end":         &graphql.Field{Type: geoPointType},
			"miles":       &graphql.Field{Type: graphql.Float},
			"recorded_at": &graphql.Field{Type: graphql.DateTime},
		},
	})

	journeyType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Journey",
		Fields: graphql.Fields{
			"session_id":       &graphql.Field{Type: graphql.String},
			"seed":             &graphql.Field{Type: geoPointType},
			"total_miles":      &graphql.Field{Type: graphql.Float},
			"run_count":        &graphql.Field{Type: graphql.Int},
			"current_position": &graphql.Field{Type: geoPointType},
			"path":             &graphql.Field{Type: graphql.NewList(segmentType)},
			"world_progress":   &graphql.Field{Type: graphql.Float},
			"nearest_city":     &graphql.Field{Type: nearestCityType},
		},
	})

	eventType := graphql.NewObject(graphql.ObjectConfig{
		Name: "JourneyEvent",
		Fields: graphql.Fields{
			"id":       &graphql.Field{Type: graphql.String},
			"type":     &graphql.Field{Type: graphql.String},
			"time":     &graphql.Field{Type: graphql.DateTime},
			"segment":  &graphql.Field{Type: segmentType},
			"snapshot": &graphql.Field{Type: journeyType},
		},
	})

	animationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Animation",
		Fields: graphql.Fields{
			"running":  &graphql.Field{Type: graphql.Boolean},
			"rotation": &graphql.Field{Type: graphql.Float},
		},
	})

	latLonArgs := graphql.FieldConfigArgument{
		"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
		"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"journey": &graphql.Field{
				Type:        journeyType,
				Description: "Current journey snapshot",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Journeys.Snapshot(p.Context), nil
				},
			},
			"cities": &graphql.Field{
				Type:        graphql.NewList(cityType),
				Description: "Reference cities in lookup order",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Cities.List(p.Context)
				},
			},
			"nearestCity": &graphql.Field{
				Type:        nearestCityType,
				Description: "Reference city closest to a point",
				Args:        latLonArgs,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					return deps.Cities.Nearest(p.Context, domain.GeoPoint{Lat: lat, Lon: lon})
				},
			},
			"project": &graphql.Field{
				Type:        vector3Type,
				Description: "Project a lat/lon onto the globe",
				Args: graphql.FieldConfigArgument{
					"lat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: usecases.GlobeRadius},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					radius := p.Args["radius"].(float64)
					return usecases.ProjectPoint(domain.GeoPoint{Lat: lat, Lon: lon}, radius), nil
				},
			},
			"animation": &graphql.Field{
				Type:        animationType,
				Description: "Globe animation state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return animationState(deps.Animation), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"addRun": &graphql.Field{
				Type:        eventType,
				Description: "Record one mock run",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Journeys.AddRun(p.Context), nil
				},
			},
			"resetData": &graphql.Field{
				Type:        eventType,
				Description: "Reset the journey to its seed",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Journeys.Reset(p.Context), nil
				},
			},
			"toggleAnimation": &graphql.Field{
				Type:        animationType,
				Description: "Pause or resume the globe rotation",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					deps.Animation.Toggle()
					return animationState(deps.Animation), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if req.Query == "" {
			return errBadRequest(c, "query is required")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
