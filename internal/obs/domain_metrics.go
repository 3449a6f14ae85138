package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts quote computations by outcome.
	QuoteTotal *prometheus.CounterVec
	// QuoteLines records the number of lines per computed quote.
	QuoteLines prometheus.Histogram
	// FloorEnforcedTotal counts lines whose price was clamped up to the floor.
	FloorEnforcedTotal prometheus.Counter
	// BenefitUncoveredTotal counts quotes where SNAP/WIC tender exceeded eligible goods.
	BenefitUncoveredTotal prometheus.Counter
	// JournalTotal counts audit journal writes by outcome.
	JournalTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers the engine's
// Prometheus collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of quote computations by outcome.",
		}, []string{"result"})
		QuoteLines = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_lines",
			Help:      "Number of lines per computed quote.",
			Buckets:   []float64{1, 2, 5, 10, 20, 50},
		})
		FloorEnforcedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "floor_enforced_total",
			Help:      "Lines clamped up to the floor price.",
		})
		BenefitUncoveredTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "benefit_uncovered_total",
			Help:      "Quotes where benefit tender exceeded eligible goods value.",
		})
		JournalTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "journal_total",
			Help:      "Audit journal writes by outcome.",
		}, []string{"result"})

		registerOrReuse(reg, QuoteTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuoteTotal = v
			}
		})
		registerOrReuse(reg, QuoteLines, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteLines = v
			}
		})
		registerOrReuse(reg, FloorEnforcedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				FloorEnforcedTotal = v
			}
		})
		registerOrReuse(reg, BenefitUncoveredTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				BenefitUncoveredTotal = v
			}
		})
		registerOrReuse(reg, JournalTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				JournalTotal = v
			}
		})
	})
}

func registerOrReuse(reg prometheus.Registerer, c prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
