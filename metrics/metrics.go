package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reservations"

var (
	once sync.Once

	reservationCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "created_total",
			Help:      "Count of reservations created by item type.",
		},
		[]string{"item_type"},
	)

	reservationFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_total",
			Help:      "Count of rejected or failed reservation requests by item type and error kind.",
		},
		[]string{"item_type", "kind"},
	)

	notificationFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Count of reservation notifications that could not be dispatched.",
		},
		[]string{"transport"},
	)

	composeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "compose_duration_seconds",
			Help:      "Time spent in the reservation transaction.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"item_type"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by route and status code.",
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(reservationCreated, reservationFailed, notificationFailed, composeDuration, httpRequests)
	})
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func IncReservationCreated(itemType string) {
	reservationCreated.WithLabelValues(itemType).Inc()
}

func IncReservationFailed(itemType, kind string) {
	reservationFailed.WithLabelValues(itemType, kind).Inc()
}

func IncNotificationFailed(transport string) {
	notificationFailed.WithLabelValues(transport).Inc()
}

func ObserveCompose(itemType string, d time.Duration) {
	composeDuration.WithLabelValues(itemType).Observe(d.Seconds())
}

func IncHTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}
