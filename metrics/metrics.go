// Package metrics exposes Prometheus counters for planner data quality and
// upstream API calls.
package metrics

import (
	"vayro/budget"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ItineraryAnomalies counts itinerary entries priced best-effort, by kind.
	ItineraryAnomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vayro",
			Name:      "itinerary_anomalies_total",
			Help:      "Itinerary entries with missing data that were priced best-effort.",
		},
		[]string{"kind"},
	)

	// PlanOutcomes counts trip plan requests by result: ok, unparseable, no_budget.
	PlanOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vayro",
			Name:      "trip_plans_total",
			Help:      "Trip plan requests by outcome.",
		},
		[]string{"outcome"},
	)

	// UpstreamErrors counts failed calls to third-party APIs.
	UpstreamErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vayro",
			Name:      "upstream_errors_total",
			Help:      "Failed calls to third-party APIs.",
		},
		[]string{"service"},
	)
)

// Register adds the collectors to reg.
func Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{ItineraryAnomalies, PlanOutcomes, UpstreamErrors} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordAnomalies adds a reconciliation's anomaly counts.
func RecordAnomalies(a budget.Anomalies) {
	ItineraryAnomalies.WithLabelValues("malformed_day").Add(float64(a.MalformedDays))
	ItineraryAnomalies.WithLabelValues("empty_slot").Add(float64(a.EmptySlots))
	ItineraryAnomalies.WithLabelValues("unnamed_option").Add(float64(a.UnnamedOptions))
	ItineraryAnomalies.WithLabelValues("unrecognized_tier").Add(float64(a.UnrecognizedTiers))
}
