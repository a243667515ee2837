package usecases_test

import (
	"context"
	"testing"
	"time"

	"github.com/samirrijal/globetrotter/internal/core/usecases"
)

func TestRunDemo_RecordsRuns(t *testing.T) {
	svc := newJourneyService(&sequence{vals: []float64{0.5}}, nil)

	usecases.RunDemo(context.Background(), svc, 3, time.Millisecond, time.Millisecond)

	if got := svc.Snapshot(context.Background()).RunCount; got != 3 {
		t.Errorf("expected 3 demo runs, got %d", got)
	}
}

func TestRunDemo_StopsOnCancel(t *testing.T) {
	svc := newJourneyService(&sequence{vals: []float64{0.5}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	usecases.RunDemo(ctx, svc, 3, time.Hour, time.Hour)

	if got := svc.Snapshot(context.Background()).RunCount; got != 0 {
		t.Errorf("expected no runs after cancel, got %d", got)
	}
}
