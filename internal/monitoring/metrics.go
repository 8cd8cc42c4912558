package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Validation metrics
	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_validations_total",
			Help: "Total number of trade validations",
		},
		[]string{"result"},
	)

	// Position lifecycle metrics
	positionUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_position_updates_total",
			Help: "Total number of position opens and merges",
		},
		[]string{"symbol", "side"},
	)

	tradesClosedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_trades_closed_total",
			Help: "Total number of full and partial closes",
		},
		[]string{"symbol", "side"},
	)

	realizedPnL = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "risk_engine_realized_pnl_abs",
			Help:    "Distribution of absolute realized PnL per close",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"symbol"},
	)

	// Risk metrics
	riskScore = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_engine_risk_score",
			Help: "Weighted overall portfolio risk score",
		},
	)

	currentDrawdown = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_engine_drawdown",
			Help: "Current drawdown from the high-water equity mark",
		},
	)

	dailyPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_engine_daily_pnl",
			Help: "Realized PnL accumulated today",
		},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_engine_open_positions",
			Help: "Number of open positions",
		},
	)

	emergencyStop = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "risk_engine_emergency_stop",
			Help: "1 while the emergency-stop breaker is latched",
		},
	)

	emergencyStopsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "risk_engine_emergency_stops_total",
			Help: "Total number of emergency-stop trips",
		},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "risk_engine_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(validationsTotal)
	prometheus.MustRegister(positionUpdatesTotal)
	prometheus.MustRegister(tradesClosedTotal)
	prometheus.MustRegister(realizedPnL)
	prometheus.MustRegister(riskScore)
	prometheus.MustRegister(currentDrawdown)
	prometheus.MustRegister(dailyPnL)
	prometheus.MustRegister(openPositions)
	prometheus.MustRegister(emergencyStop)
	prometheus.MustRegister(emergencyStopsTotal)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles the Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordValidation records a validation outcome
func RecordValidation(accepted bool) {
	result := "rejected"
	if accepted {
		result = "accepted"
	}
	validationsTotal.WithLabelValues(result).Inc()
}

// RecordPositionUpdate records a position open or merge
func RecordPositionUpdate(symbol, side string) {
	positionUpdatesTotal.WithLabelValues(symbol, side).Inc()
}

// RecordTradeClose records a full or partial close with its PnL
func RecordTradeClose(symbol, side string, pnl float64) {
	tradesClosedTotal.WithLabelValues(symbol, side).Inc()
	if pnl < 0 {
		pnl = -pnl
	}
	realizedPnL.WithLabelValues(symbol).Observe(pnl)
}

// UpdateRiskGauges updates the portfolio risk gauges after a recompute
func UpdateRiskGauges(score, drawdown, daily float64, positions int) {
	riskScore.Set(score)
	currentDrawdown.Set(drawdown)
	dailyPnL.Set(daily)
	openPositions.Set(float64(positions))
}

// SetEmergencyStop reflects the breaker state
func SetEmergencyStop(active bool) {
	if active {
		emergencyStop.Set(1)
	} else {
		emergencyStop.Set(0)
	}
}

// RecordEmergencyStop records a breaker trip
func RecordEmergencyStop() {
	emergencyStopsTotal.Inc()
}

// RecordError records an error metric and surfaces it in the registered
// health checker's recent-errors list
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
	if h := activeHealthChecker(); h != nil {
		h.RecordError(errorType)
	}
}
