package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// ConversionTotal counts currency conversions by resolution path.
	ConversionTotal *prometheus.CounterVec
	// ConversionEstimatedTotal counts conversions that fell back to a 1:1
	// passthrough because no applicable rate existed. A growing counter is a
	// rate-table data-quality defect, not an engine error.
	ConversionEstimatedTotal prometheus.Counter
	// QuoteTotal counts quote calculations by kind and outcome.
	QuoteTotal *prometheus.CounterVec
	// OfferEvaluationTotal counts promotional offer evaluations by outcome.
	OfferEvaluationTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		ConversionTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "currency_conversion_total",
			Help:      "Count of currency conversions by resolution path.",
		}, []string{"path"})
		ConversionEstimatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "currency_conversion_estimated_total",
			Help:      "Conversions that passed through 1:1 because no rate was available.",
		})
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of quote calculations by kind and outcome.",
		}, []string{"kind", "result"})
		OfferEvaluationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offer_evaluation_total",
			Help:      "Count of promotional offer evaluations by outcome.",
		}, []string{"result"})
		reg.MustRegister(ConversionTotal, ConversionEstimatedTotal, QuoteTotal, OfferEvaluationTotal)
	})
}
