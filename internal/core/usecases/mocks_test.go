package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/globetrotter/internal/core/domain"
)

// --- Mock CityRepository ---

type mockCityRepo struct {
	listFn func(ctx context.Context) ([]domain.ReferenceCity, error)
	calls  int
}

func (m *mockCityRepo) List(ctx context.Context) ([]domain.ReferenceCity, error) {
	m.calls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return domain.DefaultCities(), nil
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, errCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

// --- Scripted RandomSource ---

// sequence replays vals in order and then repeats the last one.
type sequence struct {
	vals []float64
	i    int
}

func (s *sequence) Float64() float64 {
	v := s.vals[s.i]
	if s.i < len(s.vals)-1 {
		s.i++
	}
	return v
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	events []*domain.JourneyEvent
	err    error
}

func (m *mockPublisher) PublishJourneyEvent(ctx context.Context, event *domain.JourneyEvent) error {
	m.events = append(m.events, event)
	return m.err
}

// --- Recording DisplaySink ---

type recordingDisplay struct {
	text  map[string]string
	width map[string]float64
}

func newRecordingDisplay() *recordingDisplay {
	return &recordingDisplay{text: map[string]string{}, width: map[string]float64{}}
}

func (d *recordingDisplay) SetText(id, value string)             { d.text[id] = value }
func (d *recordingDisplay) SetStyleWidth(id string, pct float64) { d.width[id] = pct }

// --- Recording Renderer ---

type recordingRenderer struct {
	mu     sync.Mutex
	marker domain.Vector3
	path   []domain.Vector3
	paths  int
	frames []domain.Frame
}

func (r *recordingRenderer) MoveMarker(pos domain.Vector3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marker = pos
}

func (r *recordingRenderer) DrawPath(points []domain.Vector3) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.path = points
	r.paths++
}

func (r *recordingRenderer) RenderFrame(f domain.Frame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
}

func (r *recordingRenderer) frameCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// --- Recording JourneyObserver ---

type recordingObserver struct {
	events []*domain.JourneyEvent
}

func (o *recordingObserver) JourneyChanged(ctx context.Context, e *domain.JourneyEvent) {
	o.events = append(o.events, e)
}
