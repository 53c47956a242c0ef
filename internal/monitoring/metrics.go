package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Risk posture, encoded 0=normal 1=cautious 2=defensive 3=emergency.
	riskState = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fusionfx_risk_state",
			Help: "Current risk state (0=normal, 1=cautious, 2=defensive, 3=emergency)",
		},
	)

	vixReading = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fusionfx_vix_reading",
			Help: "Last volatility index reading used for risk evaluation",
		},
	)

	drawdownPct = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fusionfx_drawdown_percent",
			Help: "Current portfolio drawdown percentage",
		},
	)

	positionUnits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fusionfx_position_size_units",
			Help:    "Distribution of calculated position sizes in units",
			Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
		},
	)

	limitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fusionfx_limit_rejections_total",
			Help: "Total number of positions rejected by the limit enforcer",
		},
		[]string{"reason"},
	)

	stateTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fusionfx_risk_state_transitions_total",
			Help: "Total number of risk state transitions",
		},
		[]string{"to"},
	)

	collaboratorFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fusionfx_collaborator_fallbacks_total",
			Help: "Total number of collaborator fetches that degraded to a default value",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(riskState)
	prometheus.MustRegister(vixReading)
	prometheus.MustRegister(drawdownPct)
	prometheus.MustRegister(positionUnits)
	prometheus.MustRegister(limitRejections)
	prometheus.MustRegister(stateTransitions)
	prometheus.MustRegister(collaboratorFallbacks)
}

// MetricsHandler serves the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// SetRiskState updates the risk state gauge.
func SetRiskState(encoded float64) {
	riskState.Set(encoded)
}

// RecordStateTransition counts a transition into a state.
func RecordStateTransition(to string) {
	stateTransitions.WithLabelValues(to).Inc()
}

// UpdateSignals records the inputs of the latest evaluation cycle.
func UpdateSignals(vix, drawdown float64) {
	vixReading.Set(vix)
	drawdownPct.Set(drawdown)
}

// ObservePositionSize records a calculated position size.
func ObservePositionSize(units int) {
	positionUnits.Observe(float64(units))
}

// RecordLimitRejection counts a rejection by reason.
func RecordLimitRejection(reason string) {
	limitRejections.WithLabelValues(reason).Inc()
}

// RecordFallback counts a collaborator fetch degraded to a default.
func RecordFallback(source string) {
	collaboratorFallbacks.WithLabelValues(source).Inc()
}
