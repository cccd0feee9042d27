package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psicanalise_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "psicanalise_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psicanalise_bookings_total",
			Help: "Booking attempts by outcome",
		},
		[]string{"outcome"},
	)

	BookingConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "psicanalise_booking_conflicts_total",
			Help: "Bookings rejected because a concurrent booking won the slot",
		},
	)

	SlotGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "psicanalise_slot_generation_duration_seconds",
			Help:    "Time spent generating bookable slots for one day",
			Buckets: prometheus.DefBuckets,
		},
	)

	SlotsGenerated = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "psicanalise_slots_generated",
			Help:    "Number of slots returned per generation call",
			Buckets: []float64{0, 1, 5, 10, 20, 40, 80},
		},
	)

	CreditsGrantedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psicanalise_credits_granted_total",
			Help: "Session credits granted by the payment collaborator",
		},
		[]string{"session_type"},
	)

	CreditsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psicanalise_credits_consumed_total",
			Help: "Session credits consumed by successful bookings",
		},
		[]string{"session_type"},
	)

	AppointmentCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "psicanalise_appointment_cancellations_total",
			Help: "Total number of appointment cancellations",
		},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "psicanalise_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "psicanalise_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// RecordBooking tracks one booking attempt. Outcome is one of: booked,
// slot_taken, no_credits, lead_time, timeout, error.
func RecordBooking(outcome string) {
	BookingsTotal.WithLabelValues(outcome).Inc()
	if outcome == "slot_taken" {
		BookingConflictsTotal.Inc()
	}
}
