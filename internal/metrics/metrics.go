package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "millbook",
			Name:      "booking_created_total",
			Help:      "Count of bookings committed to the timetable.",
		},
	)

	bookingRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "millbook",
			Name:      "booking_rejected_total",
			Help:      "Count of rejected booking attempts by reason.",
		},
		[]string{"reason"},
	)

	closureCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "millbook",
			Name:      "closure_created_total",
			Help:      "Count of slot ranges closed by the administrator.",
		},
	)

	timetableResets = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "millbook",
			Name:      "timetable_resets_total",
			Help:      "Count of daily full-clear resets.",
		},
	)

	connectedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "millbook",
			Name:      "ws_connected_clients",
			Help:      "Number of websocket clients currently connected.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingRejected, closureCreated, timetableResets, connectedClients)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingRejected(reason string) {
	bookingRejected.WithLabelValues(reason).Inc()
}

func IncClosureCreated() {
	closureCreated.Inc()
}

func IncTimetableReset() {
	timetableResets.Inc()
}

func IncConnectedClients() {
	connectedClients.Inc()
}

func DecConnectedClients() {
	connectedClients.Dec()
}
