package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonhub",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by staff preference.",
		},
		[]string{"preference"},
	)

	bookingConflict = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "salonhub",
			Name:      "booking_conflict_total",
			Help:      "Count of booking attempts rejected because the slot was taken.",
		},
	)

	bookingTransition = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonhub",
			Name:      "booking_transition_total",
			Help:      "Count of booking status transitions.",
		},
		[]string{"to"},
	)

	availabilityCacheHit = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonhub",
			Name:      "availability_cache_total",
			Help:      "Availability lookups by cache outcome.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingConflict, bookingTransition, availabilityCacheHit)
	})
}

func IncBookingCreated(preference string) {
	bookingCreated.WithLabelValues(preference).Inc()
}

func IncBookingConflict() {
	bookingConflict.Inc()
}

func IncBookingTransition(to string) {
	bookingTransition.WithLabelValues(to).Inc()
}

func IncAvailabilityCache(outcome string) {
	availabilityCacheHit.WithLabelValues(outcome).Inc()
}
