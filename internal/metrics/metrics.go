// Package metrics provides the centralized Prometheus registry for the
// football probability engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

const namespace = "football_engine"

// Counter metrics
var (
	PredictionsComputedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_computed_total",
		Help:      "Total number of match probability computations",
	})
	DegenerateFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "degenerate_fallbacks_total",
		Help:      "Total number of documented numerical fallbacks taken",
	}, []string{"kind"})
	TicketsEvaluatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_evaluated_total",
		Help:      "Total number of tickets evaluated",
	})
	TicketsAcceptedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_accepted_total",
		Help:      "Total number of tickets accepted",
	})
	TicketsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_rejected_total",
		Help:      "Total number of tickets rejected, by reason",
	}, []string{"reason"})
	HardContradictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hard_contradictions_total",
		Help:      "Total number of hard-contradiction vetoes",
	})
	CurveActivationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "curve_activations_total",
		Help:      "Total number of calibration curve activations",
	})
	FixturesIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fixtures_ingested_total",
		Help:      "Total fixtures pulled from the odds feed",
	})
	OddsTicksProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "odds_ticks_processed_total",
		Help:      "Total live odds ticks applied to tracked fixtures",
	})
	CalibrationFitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "calibration_fits_total",
		Help:      "Total number of calibration fit attempts, by result",
	}, []string{"result"})
)

// Gauge metrics
var (
	EntropyMean = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "entropy_mean",
		Help:      "Rolling mean of normalized prediction entropy",
	})
	EntropyStatus = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "entropy_status",
		Help:      "Entropy monitor status flags (exactly one is 1)",
	}, []string{"status"})
	AcceptanceThreshold = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "acceptance_threshold",
		Help:      "Current ticket acceptance score threshold",
	})
	ActiveTemperature = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_temperature",
		Help:      "Current uncertainty-softening temperature",
	})
	CurveCacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "curve_cache_size",
		Help:      "Number of calibration curve sets currently cached",
	})
)

// Histogram metrics
var (
	PredictionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_duration_seconds",
		Help:      "Duration of one full probability pipeline run",
		Buckets:   prometheus.DefBuckets,
	})
	PortfolioSelectionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "portfolio_selection_duration_seconds",
		Help:      "Duration of greedy portfolio selection",
		Buckets:   prometheus.DefBuckets,
	})
	OddsFeedLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "odds_feed_latency_seconds",
		Help:      "Latency of odds feed requests",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(PredictionsComputedTotal)
		registry.MustRegister(DegenerateFallbacksTotal)
		registry.MustRegister(TicketsEvaluatedTotal)
		registry.MustRegister(TicketsAcceptedTotal)
		registry.MustRegister(TicketsRejectedTotal)
		registry.MustRegister(HardContradictionsTotal)
		registry.MustRegister(CurveActivationsTotal)
		registry.MustRegister(FixturesIngestedTotal)
		registry.MustRegister(OddsTicksProcessedTotal)
		registry.MustRegister(CalibrationFitsTotal)

		registry.MustRegister(EntropyMean)
		registry.MustRegister(EntropyStatus)
		registry.MustRegister(AcceptanceThreshold)
		registry.MustRegister(ActiveTemperature)
		registry.MustRegister(CurveCacheSize)

		registry.MustRegister(PredictionDuration)
		registry.MustRegister(PortfolioSelectionDuration)
		registry.MustRegister(OddsFeedLatency)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordPrediction records one pipeline run.
func RecordPrediction(durationSeconds float64) {
	PredictionsComputedTotal.Inc()
	PredictionDuration.Observe(durationSeconds)
}

// RecordTicketDecision records an accept/reject outcome.
func RecordTicketDecision(accepted bool, reason string) {
	TicketsEvaluatedTotal.Inc()
	if accepted {
		TicketsAcceptedTotal.Inc()
		return
	}
	TicketsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordEntropyStatus publishes the monitor snapshot to the gauges.
func RecordEntropyStatus(status string, mean float64) {
	EntropyMean.Set(mean)
	for _, s := range []string{"ok", "warning", "critical"} {
		v := 0.0
		if s == status {
			v = 1.0
		}
		EntropyStatus.WithLabelValues(s).Set(v)
	}
}
