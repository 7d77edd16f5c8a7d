package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests by handler.",
		},
		[]string{"handler"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "booking_created_total",
			Help:      "Count of booking submissions by outcome.",
		},
		[]string{"outcome"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled from the dashboard.",
		},
	)

	slotComputations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotbook",
			Name:      "slot_computations_total",
			Help:      "Count of open-slot computations for booking pages.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingCreated, bookingCancelled, slotComputations)
	})
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}

func IncBookingCreated(outcome string) {
	bookingCreated.WithLabelValues(outcome).Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncSlotComputation() {
	slotComputations.Inc()
}
