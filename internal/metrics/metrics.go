// Package metrics exposes Prometheus counters for the reservation core.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	reservationCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "reservation_created_total",
			Help:      "Count of reservations created.",
		},
	)

	reservationRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "reservation_rejected_total",
			Help:      "Count of reservations rejected by validation, by failing rule.",
		},
		[]string{"rule"},
	)

	paymentSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "payment_settled_total",
			Help:      "Count of payments settled, by method.",
		},
		[]string{"method"},
	)

	paymentFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "payment_failed_total",
			Help:      "Count of failed settlement attempts, by reason.",
		},
		[]string{"reason"},
	)

	paymentDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "payment_deleted_total",
			Help:      "Count of payments deleted.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "hotel",
			Name:      "http_requests_total",
			Help:      "Count of HTTP requests, by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			reservationCreated, reservationRejected,
			paymentSettled, paymentFailed, paymentDeleted,
			httpRequests,
		)
	})
}

func IncReservationCreated() {
	reservationCreated.Inc()
}

func IncReservationRejected(rule string) {
	reservationRejected.WithLabelValues(rule).Inc()
}

func IncPaymentSettled(method string) {
	paymentSettled.WithLabelValues(method).Inc()
}

func IncPaymentFailed(reason string) {
	paymentFailed.WithLabelValues(reason).Inc()
}

func IncPaymentDeleted() {
	paymentDeleted.Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
