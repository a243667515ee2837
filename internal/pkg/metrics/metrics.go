package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "globetrotter",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "globetrotter",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Journey metrics
	RunsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "journey",
		Name:      "runs_recorded_total",
		Help:      "Total mock runs recorded",
	})

	MilesRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "journey",
		Name:      "miles_recorded_total",
		Help:      "Total miles recorded across all runs, resets included",
	})

	JourneyResets = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "journey",
		Name:      "resets_total",
		Help:      "Total journey resets",
	})

	JourneyTotalMiles = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "globetrotter",
		Subsystem: "journey",
		Name:      "total_miles",
		Help:      "Miles covered by the current journey",
	})

	// Scene metrics
	FramesRendered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "scene",
		Name:      "frames_rendered_total",
		Help:      "Total animation frames emitted",
	})

	AnimationRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "globetrotter",
		Subsystem: "scene",
		Name:      "animation_running",
		Help:      "1 while the animation loop is ticking",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "globetrotter",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	WebSocketDrops = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "ws",
		Name:      "dropped_messages_total",
		Help:      "Messages dropped because a client fell behind",
	})

	// Event bus metrics
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Journey events published to NATS",
	}, []string{"type", "result"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "events",
		Name:      "consumed_total",
		Help:      "Journey events consumed from NATS",
	}, []string{"type"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "globetrotter",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
