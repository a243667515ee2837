package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/globetrotter/internal/pkg/geospatial"
)

const (
	// EarthCircumferenceMiles is the distance of one full lap around the globe.
	EarthCircumferenceMiles = 24901.0

	MinLatitude = -85.0
	MaxLatitude = 85.0
)

// PathSegment is one recorded run, from where the journey stood to where it ended up.
type PathSegment struct {
	ID         string    `json:"id"`
	Start      GeoPoint  `json:"start"`
	End        GeoPoint  `json:"end"`
	Miles      float64   `json:"miles"`
	RecordedAt time.Time `json:"recorded_at"`
}

// RunningJourney is the aggregate root of a session. Path is append-only and
// in chronological order; TotalMiles and RunCount always agree with it.
type RunningJourney struct {
	Seed            GeoPoint      `json:"seed"`
	TotalMiles      float64       `json:"total_miles"`
	RunCount        int           `json:"run_count"`
	CurrentPosition GeoPoint      `json:"current_position"`
	Path            []PathSegment `json:"path"`
}

// NewRunningJourney starts a journey at seed.
func NewRunningJourney(seed GeoPoint) *RunningJourney {
	j := &RunningJourney{Seed: seed}
	j.Reset()
	return j
}

// Record advances the journey by one run of the given length. Longitude moves
// east by the share of the circumference covered; latitude wobbles by latDelta
// and is clamped away from the poles.
func (j *RunningJourney) Record(miles, latDelta float64, at time.Time) PathSegment {
	lonDelta := miles / EarthCircumferenceMiles * 360

	start := j.CurrentPosition
	end := GeoPoint{
		Lat: geospatial.ClampLatitude(start.Lat+latDelta, MinLatitude, MaxLatitude),
		Lon: geospatial.NormalizeLongitude(start.Lon + lonDelta),
	}

	seg := PathSegment{
		ID:         uuid.NewString(),
		Start:      start,
		End:        end,
		Miles:      miles,
		RecordedAt: at,
	}

	j.Path = append(j.Path, seg)
	j.TotalMiles += miles
	j.RunCount++
	j.CurrentPosition = end
	return seg
}

// Reset puts the journey back at its seed with no history.
func (j *RunningJourney) Reset() {
	j.TotalMiles = 0
	j.RunCount = 0
	j.CurrentPosition = j.Seed
	j.Path = nil
}

// WorldProgress returns how much of one lap has been covered, in percent, capped at 100.
func (j *RunningJourney) WorldProgress() float64 {
	p := j.TotalMiles / EarthCircumferenceMiles * 100
	if p > 100 {
		return 100
	}
	return p
}

// JourneySnapshot is a read-only copy of the journey plus derived readouts.
type JourneySnapshot struct {
	SessionID       string        `json:"session_id"`
	Seed            GeoPoint      `json:"seed"`
	TotalMiles      float64       `json:"total_miles"`
	RunCount        int           `json:"run_count"`
	CurrentPosition GeoPoint      `json:"current_position"`
	Path            []PathSegment `json:"path"`
	WorldProgress   float64       `json:"world_progress"`
	NearestCity     *NearestCity  `json:"nearest_city,omitempty"`
}

// Snapshot copies the journey so callers can hold on to it after further runs.
func (j *RunningJourney) Snapshot(sessionID string) JourneySnapshot {
	path := make([]PathSegment, len(j.Path))
	copy(path, j.Path)

	return JourneySnapshot{
		SessionID:       sessionID,
		Seed:            j.Seed,
		TotalMiles:      j.TotalMiles,
		RunCount:        j.RunCount,
		CurrentPosition: j.CurrentPosition,
		Path:            path,
		WorldProgress:   j.WorldProgress(),
	}
}

// JourneyEventType names what happened to a journey.
type JourneyEventType string

const (
	EventJourneyStarted JourneyEventType = "journey_started"
	EventRunRecorded    JourneyEventType = "run_recorded"
	EventJourneyReset   JourneyEventType = "journey_reset"
)

// JourneyEvent is emitted after every journey mutation.
type JourneyEvent struct {
	ID       string           `json:"id"`
	Type     JourneyEventType `json:"type"`
	Time     time.Time        `json:"time"`
	Segment  *PathSegment     `json:"segment,omitempty"`
	Snapshot JourneySnapshot  `json:"snapshot"`
}
