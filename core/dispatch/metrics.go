package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	assignmentAttempts      *prometheus.CounterVec
	assignmentRacesLost     prometheus.Counter
	driverDisqualifications *prometheus.CounterVec
	distanceLookupFailures  prometheus.Counter
	matchingDuration        prometheus.Histogram
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Counter, *prometheus.CounterVec, prometheus.Counter, prometheus.Histogram) {
	attempts := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "load_assignment_attempts_total",
			Help: "Assignment and acceptance attempts by outcome",
		},
		[]string{"outcome"},
	)
	races := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "load_assignment_races_lost_total",
			Help: "Conditional writes that affected zero rows because another request won",
		},
	)
	disq := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "driver_disqualifications_total",
			Help: "Drivers disqualified during matching, by reason kind",
		},
		[]string{"reason"},
	)
	distFail := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "distance_lookup_failures_total",
			Help: "Distance provider failures during candidate scoring",
		},
	)
	dur := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "driver_matching_duration_seconds",
			Help:    "Duration of a full filter-score-rank pass",
			Buckets: prometheus.DefBuckets,
		},
	)
	return attempts, races, disq, distFail, dur
}

func init() {
	assignmentAttempts, assignmentRacesLost, driverDisqualifications, distanceLookupFailures, matchingDuration = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		assignmentAttempts,
		assignmentRacesLost,
		driverDisqualifications,
		distanceLookupFailures,
		matchingDuration,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
