// Package metrics defines the prometheus collectors of the server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "geoarea"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})

	// SceneEvents counts emitted scene events by kind.
	SceneEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "scene",
		Name:      "events_total",
		Help:      "Scene events emitted",
	}, []string{"kind"})

	// SceneMarkers is the current marker count.
	SceneMarkers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scene",
		Name:      "markers",
		Help:      "Markers currently placed",
	})

	// SceneArea is the area of the current boundary, 0 without one.
	SceneArea = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "scene",
		Name:      "area_square_meters",
		Help:      "Surface enclosed by the current boundary",
	})

	// DocumentOps counts imports and exports by format and result.
	DocumentOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "document",
		Name:      "operations_total",
		Help:      "Document imports and exports",
	}, []string{"op", "format", "result"})

	// WebsocketClients is the number of connected event stream clients.
	WebsocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "ws",
		Name:      "clients",
		Help:      "Connected websocket clients",
	})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records a finished HTTP request.
func ObserveRequest(method, route string, status int, d time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveDocument records an import or export outcome.
func ObserveDocument(op, format string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DocumentOps.WithLabelValues(op, format, result).Inc()
}

// SceneListener returns a scene listener that keeps the scene gauges current.
// markers is called to read the marker count after each event.
func SceneListener(markers func() int) scene.Listener {
	return func(e scene.Event) {
		SceneEvents.WithLabelValues(string(e.Kind)).Inc()

		switch e.Kind {
		case scene.EventBoundaryChanged:
			if e.Area != nil {
				SceneArea.Set(e.Area.SquareMeters)
			} else {
				SceneArea.Set(0)
			}
		case scene.EventMarkerAdded, scene.EventCleared:
			SceneMarkers.Set(float64(markers()))
		}
	}
}
