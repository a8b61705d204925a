package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeCreated         = "created"
	OutcomeValidationError = "validation_error"
	OutcomeStoreError      = "store_error"

	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

var (
	// TicketsSubmitted число обработанных заявок по исходу (counter)
	TicketsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tickets",
			Name:      "submitted_total",
			Help:      "The total number of ticket submissions by outcome",
		},
		[]string{"outcome"},
	)

	// NotificationsSent число попыток отправки SMS по исходу (counter)
	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notifications",
			Name:      "sent_total",
			Help:      "The total number of SMS notification attempts by outcome",
		},
		[]string{"outcome"},
	)
)
