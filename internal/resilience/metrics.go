package resilience

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	breakerState     *prometheus.GaugeVec
	breakerOpenTotal *prometheus.CounterVec

	metricsOnce sync.Once
)

// MustRegisterMetrics installs the breaker gauges on the given
// registerer (the default one when nil). Safe to call more than once.
func MustRegisterMetrics(namespace string, reg prometheus.Registerer) {
	metricsOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		breakerState = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Breaker state: 0=closed, 1=open, 2=half-open.",
		}, []string{"breaker"})
		breakerOpenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_open_total",
			Help:      "Times a breaker transitioned to open.",
		}, []string{"breaker"})
		reg.MustRegister(breakerState, breakerOpenTotal)
	})
}
