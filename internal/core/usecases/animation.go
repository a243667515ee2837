package usecases

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/samirrijal/globetrotter/internal/core/domain"
	"github.com/samirrijal/globetrotter/internal/core/ports"
	"github.com/samirrijal/globetrotter/internal/pkg/metrics"
)

const (
	// DefaultSpin is the idle globe rotation per frame, in radians.
	DefaultSpin = 0.002
	// DefaultFrameInterval is roughly 30 frames per second.
	DefaultFrameInterval = 33 * time.Millisecond

	transitionEase      = 0.1
	transitionTolerance = 0.01
)

// AnimationLoop drives the globe rotation on a fixed tick. It only reads the
// journey through the marker and transition target handed to it.
type AnimationLoop struct {
	renderer ports.Renderer
	interval time.Duration
	spin     float64

	mu       sync.Mutex
	seq      uint64
	rotation float64
	target   *float64
	marker   domain.Vector3

	baseCtx context.Context
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewAnimationLoop creates a stopped loop.
func NewAnimationLoop(renderer ports.Renderer, interval time.Duration, spin float64) *AnimationLoop {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &AnimationLoop{
		renderer: renderer,
		interval: interval,
		spin:     spin,
		baseCtx:  context.Background(),
	}
}

// Start runs the loop until ctx is cancelled or Stop is called. Starting a
// running loop is a no-op.
func (a *AnimationLoop) Start(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.baseCtx = ctx
	a.startLocked()
}

func (a *AnimationLoop) startLocked() {
	if a.cancel != nil {
		return
	}
	// A cancelled parent would end the loop at once; restarts after that run detached.
	if a.baseCtx.Err() != nil {
		a.baseCtx = context.Background()
	}

	ctx, cancel := context.WithCancel(a.baseCtx)
	done := make(chan struct{})
	a.cancel = cancel
	a.done = done
	metrics.AnimationRunning.Set(1)

	go a.run(ctx, done)
}

func (a *AnimationLoop) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	slog.Debug("animation loop started", "interval", a.interval)
	for {
		select {
		case <-ticker.C:
			a.Step()
		case <-ctx.Done():
			a.mu.Lock()
			if a.done == done {
				a.cancel, a.done = nil, nil
				metrics.AnimationRunning.Set(0)
			}
			a.mu.Unlock()
			slog.Debug("animation loop stopped")
			return
		}
	}
}

// Stop halts the loop and waits for the in-flight frame to finish.
func (a *AnimationLoop) Stop() {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	if cancel != nil {
		metrics.AnimationRunning.Set(0)
	}
	a.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Toggle flips the loop between running and stopped and reports the new state.
func (a *AnimationLoop) Toggle() bool {
	a.mu.Lock()
	if a.cancel == nil {
		a.startLocked()
		a.mu.Unlock()
		return true
	}
	a.mu.Unlock()

	a.Stop()
	return false
}

// Running reports whether the loop is ticking.
func (a *AnimationLoop) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}

// Rotation returns the current globe rotation in radians.
func (a *AnimationLoop) Rotation() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rotation
}

// SetMarker sets the marker position drawn with every frame.
func (a *AnimationLoop) SetMarker(v domain.Vector3) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.marker = v
}

// TransitionTo eases the rotation toward angle over the following frames. The
// target is moved by whole turns so the globe takes the short way round.
func (a *AnimationLoop) TransitionTo(angle float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	turns := math.Round((a.rotation - angle) / (2 * math.Pi))
	t := angle + turns*2*math.Pi
	a.target = &t
}

// Step advances one frame and hands it to the renderer.
func (a *AnimationLoop) Step() domain.Frame {
	a.mu.Lock()
	// Idle spin pauses while a transition is in progress.
	if a.target != nil {
		diff := *a.target - a.rotation
		if math.Abs(diff) > transitionTolerance {
			a.rotation += diff * transitionEase
		} else {
			a.target = nil
		}
	} else {
		a.rotation += a.spin
	}
	a.seq++
	frame := domain.Frame{Seq: a.seq, Rotation: a.rotation, Marker: a.marker}
	a.mu.Unlock()

	a.renderer.RenderFrame(frame)
	metrics.FramesRendered.Inc()
	return frame
}
