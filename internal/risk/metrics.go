package risk

import (
	"math"
	"time"

	"github.com/ducminhle1904/risk-engine/internal/position"
)

// Level categorizes the overall portfolio risk
type Level string

const (
	LevelLow      Level = "LOW"
	LevelMedium   Level = "MEDIUM"
	LevelHigh     Level = "HIGH"
	LevelCritical Level = "CRITICAL"
)

// Weights of the overall risk score. These are fixed production constants;
// changing them changes the meaning of every recorded risk level.
const (
	weightPortfolioRisk     = 0.30
	weightPositionRisk      = 0.20
	weightLeverageRisk      = 0.20
	weightConcentrationRisk = 0.15
	weightVolatilityRisk    = 0.15
)

// Score thresholds for the derived risk level
const (
	levelMediumThreshold   = 0.3
	levelHighThreshold     = 0.6
	levelCriticalThreshold = 0.8
)

// Volatility input is not wired yet; the aggregator reports a fixed
// baseline until a real volatility feed exists.
const placeholderVolatilityRisk = 0.3

// Correlation heuristic return values. This is a placeholder lookup, not a
// statistical correlation.
const (
	correlationSameSymbol  = 0.8
	correlationRelatedPair = 0.6
	correlationBaseline    = 0.2
)

// relatedPairs is the fixed table of symbols treated as correlated by the
// placeholder heuristic.
var relatedPairs = map[string][]string{
	"BTCUSDT":  {"ETHUSDT"},
	"ETHUSDT":  {"BTCUSDT"},
	"SOLUSDT":  {"AVAXUSDT"},
	"AVAXUSDT": {"SOLUSDT"},
	"BNBUSDT":  {"BTCUSDT"},
	"DOGEUSDT": {"SHIBUSDT"},
	"SHIBUSDT": {"DOGEUSDT"},
}

// Metrics is the portfolio-level risk snapshot. It is recomputed wholesale
// after every position mutation and never partially updated.
type Metrics struct {
	PortfolioRisk     float64   `json:"portfolio_risk"`
	PositionRisk      float64   `json:"position_risk"`
	LeverageRisk      float64   `json:"leverage_risk"`
	ConcentrationRisk float64   `json:"concentration_risk"`
	CorrelationRisk   float64   `json:"correlation_risk"`
	DrawdownRisk      float64   `json:"drawdown_risk"`
	VolatilityRisk    float64   `json:"volatility_risk"`
	Level             Level     `json:"level"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Score returns the weighted overall risk score in [0, 1]
func (m Metrics) Score() float64 {
	score := weightPortfolioRisk*m.PortfolioRisk +
		weightPositionRisk*m.PositionRisk +
		weightLeverageRisk*m.LeverageRisk +
		weightConcentrationRisk*m.ConcentrationRisk +
		weightVolatilityRisk*m.VolatilityRisk
	return math.Min(score, 1.0)
}

// levelForScore maps a weighted score to a risk level
func levelForScore(score float64) Level {
	switch {
	case score >= levelCriticalThreshold:
		return LevelCritical
	case score >= levelHighThreshold:
		return LevelHigh
	case score >= levelMediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// computeMetrics builds a full risk snapshot from the open position set.
// drawdown is the current high-water-mark drawdown supplied by the engine.
func computeMetrics(positions []position.Position, portfolioValue, drawdown float64, maxLeverage int) Metrics {
	m := Metrics{
		DrawdownRisk:   drawdown,
		VolatilityRisk: placeholderVolatilityRisk,
		UpdatedAt:      time.Now(),
	}

	if len(positions) > 0 {
		totalExposure := 0.0
		largest := 0.0
		leverageSum := 0.0
		exposureBySymbol := make(map[string]float64)

		for _, pos := range positions {
			notional := pos.Notional()
			totalExposure += notional
			exposureBySymbol[pos.Symbol] += notional
			leverageSum += float64(pos.Leverage)
			if notional > largest {
				largest = notional
			}
		}

		if portfolioValue > 0 {
			m.PortfolioRisk = totalExposure / portfolioValue
			m.PositionRisk = largest / portfolioValue
		}

		if maxLeverage > 0 {
			m.LeverageRisk = math.Min(leverageSum/float64(len(positions))/float64(maxLeverage), 1.0)
		}

		// Herfindahl index over symbol exposure shares: 1.0 with a single
		// symbol, 1/n when evenly split across n symbols.
		if totalExposure > 0 {
			for _, exposure := range exposureBySymbol {
				share := exposure / totalExposure
				m.ConcentrationRisk += share * share
			}
		}

		m.CorrelationRisk = portfolioCorrelation(exposureBySymbol)
	}

	m.Level = levelForScore(m.Score())
	return m
}

// correlationForCandidate returns the placeholder correlation risk a new
// trade in symbol would add against the open position set.
func correlationForCandidate(positions []position.Position, symbol string) float64 {
	if len(positions) == 0 {
		return 0
	}

	risk := correlationBaseline
	for _, pos := range positions {
		if pos.Symbol == symbol {
			return correlationSameSymbol
		}
		if isRelatedPair(pos.Symbol, symbol) && risk < correlationRelatedPair {
			risk = correlationRelatedPair
		}
	}
	return risk
}

// portfolioCorrelation returns the highest pairwise correlation heuristic
// across the open symbols. Zero with fewer than two symbols.
func portfolioCorrelation(exposureBySymbol map[string]float64) float64 {
	if len(exposureBySymbol) < 2 {
		return 0
	}

	risk := correlationBaseline
	symbols := make([]string, 0, len(exposureBySymbol))
	for symbol := range exposureBySymbol {
		symbols = append(symbols, symbol)
	}
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			if isRelatedPair(symbols[i], symbols[j]) && risk < correlationRelatedPair {
				risk = correlationRelatedPair
			}
		}
	}
	return risk
}

func isRelatedPair(a, b string) bool {
	for _, related := range relatedPairs[a] {
		if related == b {
			return true
		}
	}
	return false
}
