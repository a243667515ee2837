package usecases

import (
	"context"
	"fmt"
	"strconv"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/ports"
)

// Display element IDs written by the Presenter.
const (
	ElementTotalMiles      = "total-miles"
	ElementRunCount        = "run-count"
	ElementWorldProgress   = "world-progress"
	ElementProgressFill    = "progress-fill"
	ElementCurrentLocation = "current-location"
)

// UnknownLocation is shown when no nearest city could be resolved.
const UnknownLocation = "Unknown"

// Presenter pushes journey readouts to a display.
type Presenter struct {
	display ports.DisplaySink
}

// NewPresenter creates a new Presenter.
func NewPresenter(display ports.DisplaySink) *Presenter {
	return &Presenter{display: display}
}

// JourneyChanged implements ports.JourneyObserver.
func (p *Presenter) JourneyChanged(_ context.Context, event *domain.JourneyEvent) {
	p.Render(event.Snapshot)
}

// Render writes every readout for snap.
func (p *Presenter) Render(snap domain.JourneySnapshot) {
	p.display.SetText(ElementTotalMiles, fmt.Sprintf("%.1f", snap.TotalMiles))
	p.display.SetText(ElementRunCount, strconv.Itoa(snap.RunCount))
	p.display.SetText(ElementWorldProgress, fmt.Sprintf("%.1f%%", snap.WorldProgress))
	p.display.SetStyleWidth(ElementProgressFill, snap.WorldProgress)

	location := UnknownLocation
	if snap.NearestCity != nil {
		location = snap.NearestCity.City.Name
	}
	p.display.SetText(ElementCurrentLocation, location)
}
