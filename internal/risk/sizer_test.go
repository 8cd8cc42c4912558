package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionSize(t *testing.T) {
	tests := []struct {
		name          string
		symbol        string
		riskFraction  float64
		entryPrice    float64
		stopLossPrice float64
		portfolio     float64
		expected      float64
	}{
		{
			name:          "Risk budget over stop distance",
			symbol:        "BTCUSDT",
			riskFraction:  0.02,
			entryPrice:    100,
			stopLossPrice: 98,
			portfolio:     10000,
			expected:      100, // 10000×0.02 / 2
		},
		{
			name:          "Oversized risk fraction clamps to the ceiling",
			symbol:        "BTCUSDT",
			riskFraction:  0.50,
			entryPrice:    100,
			stopLossPrice: 98,
			portfolio:     10000,
			expected:      100,
		},
		{
			name:          "Zero risk fraction clamps to the ceiling",
			symbol:        "BTCUSDT",
			riskFraction:  0,
			entryPrice:    100,
			stopLossPrice: 98,
			portfolio:     10000,
			expected:      100,
		},
		{
			name:          "Negative risk fraction clamps to the ceiling",
			symbol:        "BTCUSDT",
			riskFraction:  -0.1,
			entryPrice:    100,
			stopLossPrice: 98,
			portfolio:     10000,
			expected:      100,
		},
		{
			name:          "Stop at entry falls back to the 2% distance",
			symbol:        "BTCUSDT",
			riskFraction:  0.02,
			entryPrice:    100,
			stopLossPrice: 100,
			portfolio:     10000,
			expected:      100, // distance 100×0.02 = 2
		},
		{
			name:          "Tight stop is capped by the global share",
			symbol:        "BTCUSDT",
			riskFraction:  0.02,
			entryPrice:    100,
			stopLossPrice: 99.9,
			portfolio:     10000,
			expected:      300, // raw 2000 capped at 10000×0.30×10/100
		},
		{
			name:          "Zero entry price",
			symbol:        "BTCUSDT",
			riskFraction:  0.02,
			entryPrice:    0,
			stopLossPrice: 98,
			portfolio:     10000,
			expected:      0,
		},
		{
			name:          "Zero portfolio value",
			symbol:        "BTCUSDT",
			riskFraction:  0.02,
			entryPrice:    100,
			stopLossPrice: 98,
			portfolio:     0,
			expected:      0,
		},
		{
			name:          "Negative portfolio value",
			symbol:        "BTCUSDT",
			riskFraction:  0.02,
			entryPrice:    100,
			stopLossPrice: 98,
			portfolio:     -5000,
			expected:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(t, Config{}, &stubPortfolio{value: tt.portfolio})

			quantity := engine.PositionSize(tt.symbol, tt.riskFraction, tt.entryPrice, tt.stopLossPrice, tt.portfolio)
			assert.InDelta(t, tt.expected, quantity, 1e-9)
			assert.GreaterOrEqual(t, quantity, 0.0)
		})
	}
}

// TestPositionSizeSymbolCaps tests the per-symbol share and leverage caps
func TestPositionSizeSymbolCaps(t *testing.T) {
	cfg := Config{
		SymbolLimits: map[string]SymbolLimits{
			"BTCUSDT": {MaxPositionShare: 0.05},
			"ETHUSDT": {MaxLeverage: 2},
		},
	}
	engine := newTestEngine(t, cfg, &stubPortfolio{value: 10000})

	// Symbol share cap: 10000×0.05/100 = 5
	quantity := engine.PositionSize("BTCUSDT", 0.02, 100, 98, 10000)
	assert.InDelta(t, 5, quantity, 1e-9)

	// Symbol leverage cap tightens the global share cap:
	// raw 2000, cap 10000×0.30×2/100 = 60
	quantity = engine.PositionSize("ETHUSDT", 0.02, 100, 99.9, 10000)
	assert.InDelta(t, 60, quantity, 1e-9)
}
