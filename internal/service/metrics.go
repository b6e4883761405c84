package service

import (
	"errors"

	"parcel-notifier/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parcel_notifier_dispatch_total",
			Help: "Total number of handled parcel events by outcome.",
		},
		[]string{"outcome"},
	)

	sendDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parcel_notifier_send_duration_seconds",
		Help:    "Latency of push notification send calls.",
		Buckets: prometheus.DefBuckets,
	})

	lookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "parcel_notifier_lookup_duration_seconds",
		Help:    "Latency of profile store lookups.",
		Buckets: prometheus.DefBuckets,
	})
)

// outcomeLabel - значение метки outcome для результата обработки.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrConfigurationFault):
		return "configuration_fault"
	case errors.Is(err, models.ErrPayloadFault):
		return "payload_fault"
	case errors.Is(err, models.ErrLookupFault):
		return "lookup_fault"
	case errors.Is(err, models.ErrDeliveryFault):
		return "delivery_fault"
	default:
		return "unknown"
	}
}
