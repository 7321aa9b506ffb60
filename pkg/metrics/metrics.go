package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_booking_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "room_booking_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// BookingAttemptsTotal counts coordinator outcomes: committed, in_flight, overlap, invalid_input, persistence.
	BookingAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_booking_attempts_total",
			Help: "Total number of booking attempts by outcome",
		},
		[]string{"outcome", "room"},
	)

	ReservationCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "room_booking_cancellations_total",
			Help: "Total number of reservation cancellations",
		},
	)

	BookingLocksHeld = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "room_booking_locks_held",
			Help: "Booking keys currently locked by in-flight requests",
		},
	)

	AvailabilityChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_booking_availability_checks_total",
			Help: "Total number of availability computations",
		},
		[]string{"status"},
	)

	EventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "room_booking_events_published_total",
			Help: "Total number of reservation events published",
		},
		[]string{"type", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBookingAttempt(outcome, room string) {
	BookingAttemptsTotal.WithLabelValues(outcome, room).Inc()
}

func RecordCancellation() {
	ReservationCancellationsTotal.Inc()
}

func RecordAvailabilityCheck(status string) {
	AvailabilityChecksTotal.WithLabelValues(status).Inc()
}

func RecordEvent(eventType, status string) {
	EventsPublishedTotal.WithLabelValues(eventType, status).Inc()
}

func LockAcquired() {
	BookingLocksHeld.Inc()
}

func LockReleased() {
	BookingLocksHeld.Dec()
}
