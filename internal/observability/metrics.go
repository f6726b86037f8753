package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_created_total",
			Help: "Tickets created, by category",
		},
		[]string{"category"},
	)

	ticketTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticket_transitions_total",
			Help: "Workflow transition attempts, by action and result",
		},
		[]string{"action", "result"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests, by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// RecordTicketCreated increments the creation counter.
func RecordTicketCreated(category string) {
	ticketsCreated.WithLabelValues(category).Inc()
}

// RecordTransition increments the transition counter. Result is "success" or
// the domain error code of the failure.
func RecordTransition(action, result string) {
	ticketTransitions.WithLabelValues(action, result).Inc()
}

// RecordRequest observes a completed HTTP request.
func RecordRequest(route, method string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}
