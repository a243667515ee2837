package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/globetrotter/internal/adapters/http"
	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/usecases"
	"github.com/samirrijal/globetrotter/internal/pkg/geospatial"
)

// ---- Mocks ----

type mockCityRepo struct {
	listFn func(ctx context.Context) ([]domain.ReferenceCity, error)
}

func (m *mockCityRepo) List(ctx context.Context) ([]domain.ReferenceCity, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return domain.DefaultCities(), nil
}

// sequence replays scripted draws, repeating the last one when exhausted.
type sequence struct {
	vals []float64
	i    int
}

func (s *sequence) Float64() float64 {
	v := s.vals[min(s.i, len(s.vals)-1)]
	s.i++
	return v
}

// ---- Test helpers ----

var newYork = domain.GeoPoint{Lat: 40.7128, Lon: -74.0060}

type testEnv struct {
	deps *handler.Dependencies
	app  *fiber.App
}

// newEnv wires the real use cases around a hub. Every run draws miles = 5
// and latDelta = 0 unless a repo or draw sequence is overridden.
func newEnv(t *testing.T, opts ...func(*envOptions)) *testEnv {
	t.Helper()

	o := envOptions{repo: &mockCityRepo{}, rng: &sequence{vals: []float64{0.3, 0.5}}}
	for _, fn := range opts {
		fn(&o)
	}

	hub := handler.NewHub(0)
	cities := usecases.NewCityService(o.repo, nil)
	anim := usecases.NewAnimationLoop(hub, time.Hour, usecases.DefaultSpin)
	t.Cleanup(anim.Stop)

	journeys := usecases.NewJourneyService(newYork, o.rng, cities, nil)
	journeys.Observe(usecases.NewPresenter(hub))
	journeys.Observe(usecases.NewSceneService(hub, anim))

	deps := &handler.Dependencies{
		Journeys:  journeys,
		Cities:    cities,
		Animation: anim,
		Hub:       hub,
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true, ErrorHandler: handler.ErrorHandler})
	handler.SetupRoutes(app, deps)
	return &testEnv{deps: deps, app: app}
}

type envOptions struct {
	repo *mockCityRepo
	rng  *sequence
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := e.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp.StatusCode, b
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %T: %v\nbody: %s", v, err, b)
	}
	return v
}

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

// ---- Journey ----

func TestGetJourney_Initial(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/v1/journey", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	snap := decode[domain.JourneySnapshot](t, body)
	if snap.TotalMiles != 0 || snap.RunCount != 0 || len(snap.Path) != 0 {
		t.Errorf("expected empty journey, got %+v", snap)
	}
	if snap.CurrentPosition != newYork {
		t.Errorf("current position = %+v, want seed", snap.CurrentPosition)
	}
	if snap.NearestCity == nil || snap.NearestCity.City.Name != "New York" {
		t.Errorf("nearest city = %+v, want New York", snap.NearestCity)
	}
	if snap.SessionID == "" {
		t.Error("expected a session ID")
	}
}

func TestAddRun_NYCScenario(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "POST", "/v1/runs", nil)
	if status != 201 {
		t.Fatalf("expected 201, got %d: %s", status, body)
	}

	event := decode[domain.JourneyEvent](t, body)
	if event.Type != domain.EventRunRecorded {
		t.Errorf("event type = %q", event.Type)
	}
	if event.Segment == nil || event.Segment.Miles != 5 {
		t.Fatalf("segment = %+v, want 5 miles", event.Segment)
	}

	snap := event.Snapshot
	if snap.TotalMiles != 5 || snap.RunCount != 1 {
		t.Errorf("total=%v count=%d, want 5 and 1", snap.TotalMiles, snap.RunCount)
	}
	if snap.CurrentPosition.Lat != newYork.Lat {
		t.Errorf("lat = %v, want unchanged %v", snap.CurrentPosition.Lat, newYork.Lat)
	}
	if got := geospatial.WrapLongitude(snap.CurrentPosition.Lon); !approx(got, -73.9337, 1e-4) {
		t.Errorf("lon = %v (wrapped %v), want about -73.9337", snap.CurrentPosition.Lon, got)
	}
	if snap.CurrentPosition.Lon < 0 || snap.CurrentPosition.Lon >= 360 {
		t.Errorf("stored lon %v outside [0, 360)", snap.CurrentPosition.Lon)
	}

	// The snapshot endpoint agrees.
	_, body = env.do(t, "GET", "/v1/journey", nil)
	if got := decode[domain.JourneySnapshot](t, body); got.RunCount != 1 {
		t.Errorf("GET /v1/journey run_count = %d, want 1", got.RunCount)
	}
}

func TestResetJourney(t *testing.T) {
	env := newEnv(t)
	env.do(t, "POST", "/v1/runs", nil)
	env.do(t, "POST", "/v1/runs", nil)

	status, body := env.do(t, "POST", "/v1/journey/reset", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	event := decode[domain.JourneyEvent](t, body)
	if event.Type != domain.EventJourneyReset {
		t.Errorf("event type = %q", event.Type)
	}
	if event.Snapshot.TotalMiles != 0 || event.Snapshot.RunCount != 0 || len(event.Snapshot.Path) != 0 {
		t.Errorf("snapshot after reset = %+v", event.Snapshot)
	}
	if event.Snapshot.CurrentPosition != newYork {
		t.Errorf("position after reset = %+v", event.Snapshot.CurrentPosition)
	}
}

func TestListSegments_Pagination(t *testing.T) {
	env := newEnv(t)
	for range 5 {
		env.do(t, "POST", "/v1/runs", nil)
	}

	req := httptest.NewRequest("GET", "/v1/journey/segments?offset=2&limit=2", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var page struct {
		Data       []domain.PathSegment `json:"data"`
		Pagination struct {
			Offset int `json:"offset"`
			Limit  int `json:"limit"`
			Total  int `json:"total"`
		} `json:"pagination"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		t.Fatal(err)
	}
	if page.Pagination.Total != 5 || page.Pagination.Offset != 2 || len(page.Data) != 2 {
		t.Errorf("page = %+v", page.Pagination)
	}
	link := resp.Header.Get("Link")
	for _, rel := range []string{`rel="first"`, `rel="prev"`, `rel="next"`, `rel="last"`} {
		if !strings.Contains(link, rel) {
			t.Errorf("Link header missing %s: %s", rel, link)
		}
	}
}

func TestListSegments_OffsetPastEnd(t *testing.T) {
	env := newEnv(t)
	env.do(t, "POST", "/v1/runs", nil)

	_, body := env.do(t, "GET", "/v1/journey/segments?offset=10", nil)
	page := decode[struct {
		Data []domain.PathSegment `json:"data"`
	}](t, body)
	if len(page.Data) != 0 {
		t.Errorf("expected empty page, got %d segments", len(page.Data))
	}
}

// ---- GeoJSON ----

func TestJourneyPath_GeoJSON(t *testing.T) {
	env := newEnv(t)
	env.do(t, "POST", "/v1/runs", nil)
	env.do(t, "POST", "/v1/runs", nil)

	req := httptest.NewRequest("GET", "/v1/journey/path.geojson", nil)
	resp, err := env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/geo+json" {
		t.Errorf("content type = %q", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type        string          `json:"type"`
				Coordinates json.RawMessage `json:"coordinates"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" {
		t.Fatalf("type = %q", fc.Type)
	}
	// current position + whole route + two segments
	if len(fc.Features) != 4 {
		t.Fatalf("got %d features, want 4", len(fc.Features))
	}
	if fc.Features[0].Geometry.Type != "Point" || fc.Features[1].Geometry.Type != "LineString" {
		t.Errorf("unexpected geometry order: %s, %s", fc.Features[0].Geometry.Type, fc.Features[1].Geometry.Type)
	}

	var route [][2]float64
	if err := json.Unmarshal(fc.Features[1].Geometry.Coordinates, &route); err != nil {
		t.Fatal(err)
	}
	if len(route) != 3 {
		t.Fatalf("route has %d points, want seed + 2", len(route))
	}
	for _, p := range route {
		if p[0] < -180 || p[0] >= 180 {
			t.Errorf("longitude %v not wrapped to [-180, 180)", p[0])
		}
	}
	if !approx(route[0][0], newYork.Lon, 1e-9) || route[0][1] != newYork.Lat {
		t.Errorf("route starts at %v, want seed", route[0])
	}
}

func TestJourneyGeoJSON_EmptyJourney(t *testing.T) {
	snap := domain.NewRunningJourney(newYork).Snapshot("s")
	fc := handler.JourneyGeoJSON(snap)
	if len(fc.Features) != 1 {
		t.Fatalf("got %d features, want only the current position", len(fc.Features))
	}
	if kind := fc.Features[0].Properties["kind"]; kind != "current_position" {
		t.Errorf("kind = %v", kind)
	}
}

// ---- Cities ----

func TestListCities(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/v1/cities", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	cities := decode[[]domain.ReferenceCity](t, body)
	if len(cities) != 10 || cities[0].Name != "New York" {
		t.Errorf("cities = %+v", cities)
	}
}

func TestNearestCity_Success(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/v1/cities/nearest?lat=48.85&lon=2.35", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	nc := decode[domain.NearestCity](t, body)
	if nc.City.Name != "Paris" {
		t.Errorf("nearest = %q, want Paris", nc.City.Name)
	}
	if nc.DistanceMiles > 1 {
		t.Errorf("distance = %v, want under a mile", nc.DistanceMiles)
	}
}

func TestNearestCity_ZeroCoordinatesAreValid(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/v1/cities/nearest?lat=0&lon=0", nil)
	if status != 200 {
		t.Fatalf("expected 200 for null island, got %d: %s", status, body)
	}
}

func TestNearestCity_BadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"missing", ""},
		{"missing lon", "?lat=10"},
		{"lat out of range", "?lat=95&lon=0"},
		{"lon out of range", "?lat=0&lon=400"},
		{"not a number", "?lat=abc&lon=0"},
	}
	env := newEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, "GET", "/v1/cities/nearest"+tt.query, nil)
			if status != 400 {
				t.Fatalf("expected 400, got %d: %s", status, body)
			}
			apiErr := decode[handler.APIError](t, body)
			if apiErr.Code != "bad_request" {
				t.Errorf("code = %q, want bad_request", apiErr.Code)
			}
		})
	}
}

func TestNearestCity_NoCities(t *testing.T) {
	env := newEnv(t, func(o *envOptions) {
		o.repo = &mockCityRepo{listFn: func(context.Context) ([]domain.ReferenceCity, error) {
			return nil, nil
		}}
	})

	status, body := env.do(t, "GET", "/v1/cities/nearest?lat=1&lon=1", nil)
	if status != 422 {
		t.Fatalf("expected 422, got %d: %s", status, body)
	}
	if apiErr := decode[handler.APIError](t, body); apiErr.Code != "unprocessable" {
		t.Errorf("code = %q, want unprocessable", apiErr.Code)
	}
}

func TestListCities_RepoFailure(t *testing.T) {
	env := newEnv(t, func(o *envOptions) {
		o.repo = &mockCityRepo{listFn: func(context.Context) ([]domain.ReferenceCity, error) {
			return nil, errors.New("connection refused")
		}}
	})

	status, body := env.do(t, "GET", "/v1/cities", nil)
	if status != 500 {
		t.Fatalf("expected 500, got %d", status)
	}
	apiErr := decode[handler.APIError](t, body)
	if strings.Contains(apiErr.Message, "connection refused") {
		t.Errorf("internal error leaked to client: %q", apiErr.Message)
	}
}

// ---- Projection ----

func TestProject(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/v1/project?lat=90&lon=0&radius=2", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	v := decode[domain.Vector3](t, body)
	if !approx(v.X, 0, 1e-9) || !approx(v.Y, 2, 1e-9) || !approx(v.Z, 0, 1e-9) {
		t.Errorf("north pole at radius 2 = %+v, want (0, 2, 0)", v)
	}
}

func TestProject_DefaultRadius(t *testing.T) {
	env := newEnv(t)

	_, body := env.do(t, "GET", "/v1/project?lat=40.7128&lon=-74.006", nil)
	v := decode[domain.Vector3](t, body)
	if !approx(v.Length(), 1, 1e-9) {
		t.Errorf("|v| = %v, want 1", v.Length())
	}
}

func TestProject_BadRadius(t *testing.T) {
	env := newEnv(t)

	for _, q := range []string{"radius=0", "radius=-1", "radius=5000"} {
		status, _ := env.do(t, "GET", "/v1/project?lat=0&lon=0&"+q, nil)
		if status != 400 {
			t.Errorf("%s: expected 400, got %d", q, status)
		}
	}
}

// ---- Animation ----

func TestAnimationToggle(t *testing.T) {
	env := newEnv(t)

	_, body := env.do(t, "GET", "/v1/animation", nil)
	if st := decode[handler.AnimationState](t, body); st.Running {
		t.Fatal("loop should start stopped in tests")
	}

	_, body = env.do(t, "POST", "/v1/animation/toggle", nil)
	if st := decode[handler.AnimationState](t, body); !st.Running {
		t.Error("first toggle should start the loop")
	}

	_, body = env.do(t, "POST", "/v1/animation/toggle", nil)
	if st := decode[handler.AnimationState](t, body); st.Running {
		t.Error("second toggle should stop the loop")
	}
}

// ---- GraphQL ----

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *testEnv) graphql(t *testing.T, query string) gqlResponse {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"query": query})
	status, body := e.do(t, "POST", "/graphql", bytes.NewReader(payload))
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	res := decode[gqlResponse](t, body)
	if len(res.Errors) > 0 {
		t.Fatalf("graphql errors: %+v", res.Errors)
	}
	return res
}

func TestGraphQL_AddRunAndQueryJourney(t *testing.T) {
	env := newEnv(t)

	res := env.graphql(t, `mutation { addRun { type segment { miles } snapshot { run_count total_miles } } }`)
	var added struct {
		Type    string `json:"type"`
		Segment struct {
			Miles float64 `json:"miles"`
		} `json:"segment"`
		Snapshot struct {
			RunCount   int     `json:"run_count"`
			TotalMiles float64 `json:"total_miles"`
		} `json:"snapshot"`
	}
	if err := json.Unmarshal(res.Data["addRun"], &added); err != nil {
		t.Fatal(err)
	}
	if added.Type != "run_recorded" || added.Segment.Miles != 5 || added.Snapshot.RunCount != 1 {
		t.Errorf("addRun = %+v", added)
	}

	res = env.graphql(t, `{ journey { run_count current_position { lat lon } nearest_city { city { name } } } }`)
	var journey struct {
		RunCount        int              `json:"run_count"`
		CurrentPosition domain.GeoPoint  `json:"current_position"`
		NearestCity     *json.RawMessage `json:"nearest_city"`
	}
	if err := json.Unmarshal(res.Data["journey"], &journey); err != nil {
		t.Fatal(err)
	}
	if journey.RunCount != 1 || journey.NearestCity == nil {
		t.Errorf("journey = %+v", journey)
	}
}

func TestGraphQL_ResetData(t *testing.T) {
	env := newEnv(t)
	env.graphql(t, `mutation { addRun { id } }`)

	res := env.graphql(t, `mutation { resetData { type snapshot { run_count total_miles } } }`)
	var reset struct {
		Type     string `json:"type"`
		Snapshot struct {
			RunCount   int     `json:"run_count"`
			TotalMiles float64 `json:"total_miles"`
		} `json:"snapshot"`
	}
	if err := json.Unmarshal(res.Data["resetData"], &reset); err != nil {
		t.Fatal(err)
	}
	if reset.Type != "journey_reset" || reset.Snapshot.RunCount != 0 || reset.Snapshot.TotalMiles != 0 {
		t.Errorf("resetData = %+v", reset)
	}
}

func TestGraphQL_QueriesAndToggle(t *testing.T) {
	env := newEnv(t)

	res := env.graphql(t, `{
		cities { name }
		nearestCity(lat: 35.6, lon: 139.6) { city { name } distance_miles }
		project(lat: 0.0, lon: -180.0) { x y z }
		animation { running }
	}`)

	var cities []struct{ Name string }
	_ = json.Unmarshal(res.Data["cities"], &cities)
	if len(cities) != 10 {
		t.Errorf("got %d cities", len(cities))
	}

	var nearest struct {
		City struct{ Name string } `json:"city"`
	}
	_ = json.Unmarshal(res.Data["nearestCity"], &nearest)
	if nearest.City.Name != "Tokyo" {
		t.Errorf("nearestCity = %q, want Tokyo", nearest.City.Name)
	}

	var v domain.Vector3
	_ = json.Unmarshal(res.Data["project"], &v)
	if !approx(v.X, -1, 1e-9) || !approx(v.Y, 0, 1e-9) || !approx(v.Z, 0, 1e-9) {
		t.Errorf("project(0, -180) = %+v, want (-1, 0, 0)", v)
	}

	res = env.graphql(t, `mutation { toggleAnimation { running } }`)
	var st handler.AnimationState
	_ = json.Unmarshal(res.Data["toggleAnimation"], &st)
	if !st.Running {
		t.Error("toggleAnimation should start the stopped loop")
	}
}

func TestGraphQL_BadRequest(t *testing.T) {
	env := newEnv(t)

	status, _ := env.do(t, "POST", "/graphql", strings.NewReader(`{"query": ""}`))
	if status != 400 {
		t.Errorf("expected 400 for empty query, got %d", status)
	}
}

// ---- System ----

func TestHealth(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/v1/health", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	res := decode[map[string]any](t, body)
	if res["status"] != "healthy" || res["session_id"] != env.deps.Journeys.SessionID() {
		t.Errorf("health = %v", res)
	}
}

func TestReady_NoOptionalServices(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/v1/ready", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	res := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, body)
	if res.Checks["cities"] != "ok" || res.Checks["nats"] != "not configured" {
		t.Errorf("checks = %v", res.Checks)
	}
}

func TestReady_CitiesUnavailable(t *testing.T) {
	env := newEnv(t, func(o *envOptions) {
		o.repo = &mockCityRepo{listFn: func(context.Context) ([]domain.ReferenceCity, error) {
			return nil, errors.New("db down")
		}}
	})

	status, _ := env.do(t, "GET", "/v1/ready", nil)
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

func TestIndexPage(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/", nil)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	for _, id := range []string{"total-miles", "run-count", "world-progress", "progress-fill", "current-location"} {
		if !bytes.Contains(body, []byte(`id="`+id+`"`)) {
			t.Errorf("index page missing element %q", id)
		}
	}
}

func TestETag_NotModified(t *testing.T) {
	env := newEnv(t)

	resp, err := env.app.Test(httptest.NewRequest("GET", "/v1/cities", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/v1/cities", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = env.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

func TestNotFound(t *testing.T) {
	env := newEnv(t)

	status, body := env.do(t, "GET", "/v1/nope", nil)
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if apiErr := decode[handler.APIError](t, body); apiErr.Code != "not_found" {
		t.Errorf("code = %q", apiErr.Code)
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	env := newEnv(t)

	status, _ := env.do(t, "GET", "/ws", nil)
	if status != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", status)
	}
}
