package risk

import (
	"math"
)

// Fallback stop distance when the caller passes no stop-loss: 2% of the
// entry price.
const defaultStopDistanceFraction = 0.02

// PositionSize computes a recommended trade quantity from a risk budget and
// a stop-loss distance:
//
//	quantity = (portfolioValue × riskFraction) / |entryPrice − stopLossPrice|
//
// An out-of-range riskFraction is silently clamped to the per-trade ceiling
// rather than rejected. The raw quantity is then capped by the symbol's
// configured position share and by the global position share at the symbol's
// leverage cap. The result is never negative; any degenerate input yields 0.
func (e *Engine) PositionSize(symbol string, riskFraction, entryPrice, stopLossPrice, portfolioValue float64) (quantity float64) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("position sizing panicked: %v", r)
			quantity = 0
		}
	}()

	if entryPrice <= 0 || portfolioValue <= 0 {
		return 0
	}

	if riskFraction <= 0 || riskFraction > e.limits.MaxPortfolioRiskPerTrade {
		riskFraction = e.limits.MaxPortfolioRiskPerTrade
	}

	priceDistance := math.Abs(entryPrice - stopLossPrice)
	if priceDistance == 0 {
		priceDistance = entryPrice * defaultStopDistanceFraction
	}

	quantity = (portfolioValue * riskFraction) / priceDistance

	// Symbol share cap, when configured, converted to quantity at the
	// entry price.
	if limits, ok := e.symbolLimits[symbol]; ok && limits.MaxPositionShare > 0 {
		maxBySymbol := portfolioValue * limits.MaxPositionShare / entryPrice
		if quantity > maxBySymbol {
			quantity = maxBySymbol
		}
	}

	// Global share cap at the symbol's leverage ceiling.
	maxByShare := portfolioValue * e.limits.MaxPositionShare * float64(e.symbolLeverageCap(symbol)) / entryPrice
	if quantity > maxByShare {
		quantity = maxByShare
	}

	return math.Max(0, quantity)
}
