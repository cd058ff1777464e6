package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route template and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tixmarket",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "The total number of handled HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tixmarket",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Time spent serving HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tixmarket",
		Name:      "bookings_created_total",
		Help:      "The total number of bookings placed",
	})

	BookingDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tixmarket",
			Name:      "booking_decisions_total",
			Help:      "Vendor decisions on bookings by outcome",
		},
		[]string{"outcome"},
	)

	PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tixmarket",
		Name:      "payments_recorded_total",
		Help:      "The total number of payments recorded",
	})

	// AdvertiseLimitHits counts advertise requests refused because every
	// slot was taken.
	AdvertiseLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tixmarket",
		Name:      "advertise_limit_hits_total",
		Help:      "Advertise requests refused by the slot limit",
	})

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tixmarket",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Listing cache lookups by result",
		},
		[]string{"result"},
	)

	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tixmarket",
		Name:      "event_publish_failures_total",
		Help:      "Domain events that could not be published",
	})

	// EventsReceived counts domain events seen on the shared channel, from
	// this instance or any other.
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tixmarket",
			Name:      "events_received_total",
			Help:      "Domain events received over pub/sub by type",
		},
		[]string{"type"},
	)
)
