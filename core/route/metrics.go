package route

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	plansTotal  prometheus.Counter
	hopFailures prometheus.Counter
)

func newCollectors() (prometheus.Counter, prometheus.Counter) {
	plans := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "route_plans_total",
			Help: "Route sequencing runs",
		},
	)
	hops := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "route_hop_failures_total",
			Help: "Hops skipped during sequencing because the distance lookup failed",
		},
	)
	return plans, hops
}

func init() {
	plansTotal, hopFailures = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers route metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{plansTotal, hopFailures} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
}
