package risk

import (
	"fmt"
)

// Limits contains the per-system risk ceilings enforced by the engine.
// The default values mirror the production configuration; they are plain
// named constants rather than derived quantities.
type Limits struct {
	MaxPortfolioRiskPerTrade float64 `json:"max_portfolio_risk_per_trade"` // 2% risk budget per trade
	MaxDailyLossFraction     float64 `json:"max_daily_loss_fraction"`      // 5% of portfolio per day
	MaxDrawdown              float64 `json:"max_drawdown"`                 // 15% from high-water mark
	MaxLeverage              int     `json:"max_leverage"`                 // 10x
	MaxPositionShare         float64 `json:"max_position_share"`           // 30% of portfolio per position
	MaxCorrelation           float64 `json:"max_correlation"`              // 0.7
}

// DefaultLimits returns the default risk configuration
func DefaultLimits() Limits {
	return Limits{
		MaxPortfolioRiskPerTrade: 0.02,
		MaxDailyLossFraction:     0.05,
		MaxDrawdown:              0.15,
		MaxLeverage:              10,
		MaxPositionShare:         0.30,
		MaxCorrelation:           0.70,
	}
}

// Validate checks that the limits are internally consistent
func (l Limits) Validate() error {
	if l.MaxPortfolioRiskPerTrade <= 0 || l.MaxPortfolioRiskPerTrade > 1 {
		return fmt.Errorf("max portfolio risk per trade must be in (0, 1], got %.4f", l.MaxPortfolioRiskPerTrade)
	}
	if l.MaxDailyLossFraction <= 0 || l.MaxDailyLossFraction > 1 {
		return fmt.Errorf("max daily loss fraction must be in (0, 1], got %.4f", l.MaxDailyLossFraction)
	}
	if l.MaxDrawdown <= 0 || l.MaxDrawdown > 1 {
		return fmt.Errorf("max drawdown must be in (0, 1], got %.4f", l.MaxDrawdown)
	}
	if l.MaxLeverage < 1 {
		return fmt.Errorf("max leverage must be at least 1, got %d", l.MaxLeverage)
	}
	if l.MaxPositionShare <= 0 || l.MaxPositionShare > 1 {
		return fmt.Errorf("max position share must be in (0, 1], got %.4f", l.MaxPositionShare)
	}
	if l.MaxCorrelation <= 0 || l.MaxCorrelation > 1 {
		return fmt.Errorf("max correlation must be in (0, 1], got %.4f", l.MaxCorrelation)
	}
	return nil
}

// SymbolLimits contains per-symbol overrides supplied by the surrounding
// system. A zero field means "no symbol-specific cap"; the global limit
// applies.
type SymbolLimits struct {
	MaxPositionShare float64 `json:"max_position_share"`
	MaxLeverage      int     `json:"max_leverage"`
}
