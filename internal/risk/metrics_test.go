package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ducminhle1904/risk-engine/internal/position"
)

func makePosition(symbol string, side position.Side, size, entry float64, leverage int) position.Position {
	return position.Position{
		Symbol:     symbol,
		Side:       side,
		Size:       size,
		EntryPrice: entry,
		Leverage:   leverage,
	}
}

// TestComputeMetricsEmptyBook tests the snapshot with no open positions
func TestComputeMetricsEmptyBook(t *testing.T) {
	m := computeMetrics(nil, 10000, 0, 10)

	assert.Equal(t, 0.0, m.PortfolioRisk)
	assert.Equal(t, 0.0, m.PositionRisk)
	assert.Equal(t, 0.0, m.LeverageRisk)
	assert.Equal(t, 0.0, m.ConcentrationRisk)
	assert.Equal(t, 0.0, m.CorrelationRisk)
	assert.Equal(t, placeholderVolatilityRisk, m.VolatilityRisk)
	assert.Equal(t, LevelLow, m.Level)
}

// TestConcentrationHerfindahl tests the concentration index against exact
// Herfindahl values
func TestConcentrationHerfindahl(t *testing.T) {
	tests := []struct {
		name      string
		positions []position.Position
		expected  float64
	}{
		{
			name: "Single symbol is fully concentrated",
			positions: []position.Position{
				makePosition("BTCUSDT", position.SideLong, 1, 1000, 1),
			},
			expected: 1.0,
		},
		{
			name: "Two symbols evenly split",
			positions: []position.Position{
				makePosition("BTCUSDT", position.SideLong, 1, 1000, 1),
				makePosition("SOLUSDT", position.SideLong, 10, 100, 1),
			},
			expected: 0.5,
		},
		{
			name: "Four symbols evenly split",
			positions: []position.Position{
				makePosition("BTCUSDT", position.SideLong, 1, 1000, 1),
				makePosition("SOLUSDT", position.SideLong, 10, 100, 1),
				makePosition("XRPUSDT", position.SideLong, 1000, 1, 1),
				makePosition("ADAUSDT", position.SideLong, 2000, 0.5, 1),
			},
			expected: 0.25,
		},
		{
			name: "Long and short on one symbol share an exposure bucket",
			positions: []position.Position{
				makePosition("BTCUSDT", position.SideLong, 1, 1000, 1),
				makePosition("BTCUSDT", position.SideShort, 1, 1000, 1),
			},
			expected: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := computeMetrics(tt.positions, 100000, 0, 10)
			assert.InDelta(t, tt.expected, m.ConcentrationRisk, 1e-9)
		})
	}
}

// TestPortfolioAndPositionRisk tests the exposure-based ratios
func TestPortfolioAndPositionRisk(t *testing.T) {
	positions := []position.Position{
		makePosition("BTCUSDT", position.SideLong, 1, 3000, 2), // notional 6000
		makePosition("ETHUSDT", position.SideLong, 1, 2000, 1), // notional 2000
	}

	m := computeMetrics(positions, 10000, 0, 10)

	assert.InDelta(t, 0.8, m.PortfolioRisk, 1e-9) // 8000 / 10000
	assert.InDelta(t, 0.6, m.PositionRisk, 1e-9)  // largest 6000 / 10000
}

// TestLeverageRiskAveragesAndClamps tests the leverage ratio
func TestLeverageRiskAveragesAndClamps(t *testing.T) {
	positions := []position.Position{
		makePosition("BTCUSDT", position.SideLong, 1, 100, 4),
		makePosition("ETHUSDT", position.SideLong, 1, 100, 6),
	}

	m := computeMetrics(positions, 100000, 0, 10)
	assert.InDelta(t, 0.5, m.LeverageRisk, 1e-9) // avg 5 / max 10

	// Positions above the configured maximum clamp at 1.0
	over := []position.Position{makePosition("BTCUSDT", position.SideLong, 1, 100, 25)}
	m = computeMetrics(over, 100000, 0, 10)
	assert.Equal(t, 1.0, m.LeverageRisk)
}

// TestDrawdownPassesThrough tests that the supplied drawdown lands in the
// snapshot untouched
func TestDrawdownPassesThrough(t *testing.T) {
	m := computeMetrics(nil, 10000, 0.12, 10)
	assert.Equal(t, 0.12, m.DrawdownRisk)
}

func TestScoreWeights(t *testing.T) {
	m := Metrics{
		PortfolioRisk:     1.0,
		PositionRisk:      0.5,
		LeverageRisk:      0.5,
		ConcentrationRisk: 1.0,
		VolatilityRisk:    0.2,
	}
	// 0.30×1.0 + 0.20×0.5 + 0.20×0.5 + 0.15×1.0 + 0.15×0.2
	assert.InDelta(t, 0.68, m.Score(), 1e-9)

	// Score is capped at 1.0
	m = Metrics{PortfolioRisk: 10}
	assert.Equal(t, 1.0, m.Score())
}

func TestLevelThresholds(t *testing.T) {
	tests := []struct {
		score    float64
		expected Level
	}{
		{0.0, LevelLow},
		{0.29, LevelLow},
		{0.3, LevelMedium},
		{0.59, LevelMedium},
		{0.6, LevelHigh},
		{0.79, LevelHigh},
		{0.8, LevelCritical},
		{1.0, LevelCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levelForScore(tt.score), "score %.2f", tt.score)
	}
}

// TestCorrelationForCandidate tests the placeholder correlation lookup
func TestCorrelationForCandidate(t *testing.T) {
	open := []position.Position{
		makePosition("BTCUSDT", position.SideLong, 1, 1000, 1),
	}

	tests := []struct {
		name      string
		positions []position.Position
		candidate string
		expected  float64
	}{
		{"Empty book carries no correlation", nil, "BTCUSDT", 0},
		{"Same symbol already open", open, "BTCUSDT", correlationSameSymbol},
		{"Related pair open", open, "ETHUSDT", correlationRelatedPair},
		{"Unrelated symbol", open, "XRPUSDT", correlationBaseline},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := correlationForCandidate(tt.positions, tt.candidate)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

// TestPortfolioCorrelation tests the pairwise scan over open symbols
func TestPortfolioCorrelation(t *testing.T) {
	single := map[string]float64{"BTCUSDT": 1000}
	assert.Equal(t, 0.0, portfolioCorrelation(single))

	related := map[string]float64{"BTCUSDT": 1000, "ETHUSDT": 500}
	assert.InDelta(t, correlationRelatedPair, portfolioCorrelation(related), 1e-9)

	unrelated := map[string]float64{"BTCUSDT": 1000, "XRPUSDT": 500}
	assert.InDelta(t, correlationBaseline, portfolioCorrelation(unrelated), 1e-9)
}

func TestIsRelatedPairIsDirectional(t *testing.T) {
	assert.True(t, isRelatedPair("BTCUSDT", "ETHUSDT"))
	assert.True(t, isRelatedPair("ETHUSDT", "BTCUSDT"))

	// BNB lists BTC but not the other way around
	assert.True(t, isRelatedPair("BNBUSDT", "BTCUSDT"))
	assert.False(t, isRelatedPair("BTCUSDT", "BNBUSDT"))

	assert.False(t, isRelatedPair("XRPUSDT", "BTCUSDT"))
}

func TestDefaultLimitsValidate(t *testing.T) {
	assert.NoError(t, DefaultLimits().Validate())
}

func TestLimitsValidateRejectsOutOfRange(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Limits)
	}{
		{"Zero per-trade risk", func(l *Limits) { l.MaxPortfolioRiskPerTrade = 0 }},
		{"Per-trade risk above 1", func(l *Limits) { l.MaxPortfolioRiskPerTrade = 1.5 }},
		{"Zero daily loss", func(l *Limits) { l.MaxDailyLossFraction = 0 }},
		{"Negative drawdown", func(l *Limits) { l.MaxDrawdown = -0.1 }},
		{"Zero leverage", func(l *Limits) { l.MaxLeverage = 0 }},
		{"Position share above 1", func(l *Limits) { l.MaxPositionShare = math.Inf(1) }},
		{"Zero correlation cap", func(l *Limits) { l.MaxCorrelation = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limits := DefaultLimits()
			tt.mutate(&limits)
			assert.Error(t, limits.Validate())
		})
	}
}
