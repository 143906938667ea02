package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuotesTotal counts quote computations by outcome.
	QuotesTotal *prometheus.CounterVec
	// QuoteDuration records end-to-end quote computation latency in milliseconds.
	QuoteDuration prometheus.Histogram
	// QuoteShipments records how many shipment groups each quote produced.
	QuoteShipments prometheus.Histogram
	// RatecardCacheTotal counts snapshot cache lookups by outcome.
	RatecardCacheTotal *prometheus.CounterVec
	// AdminWritesTotal counts rate-card admin mutations by operation.
	AdminWritesTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuotesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotes_total",
			Help:      "Count of quote requests by result.",
		}, []string{"result"})
		QuoteDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_duration_ms",
			Help:      "Latency of quote computation in milliseconds.",
			Buckets:   []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500},
		})
		QuoteShipments = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_shipment_groups",
			Help:      "Number of shipment groups produced per quote.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		})
		RatecardCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratecard_cache_total",
			Help:      "Count of rate-card snapshot cache lookups by outcome.",
		}, []string{"outcome"})
		AdminWritesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratecard_admin_writes_total",
			Help:      "Count of rate-card admin mutations by operation.",
		}, []string{"operation"})

		registerOrReuse(reg, QuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				QuotesTotal = v
			}
		})
		registerOrReuse(reg, QuoteDuration, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteDuration = v
			}
		})
		registerOrReuse(reg, QuoteShipments, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				QuoteShipments = v
			}
		})
		registerOrReuse(reg, RatecardCacheTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				RatecardCacheTotal = v
			}
		})
		registerOrReuse(reg, AdminWritesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				AdminWritesTotal = v
			}
		})
	})
}
