package risk

import (
	"context"
	"fmt"

	engineerrors "github.com/ducminhle1904/risk-engine/internal/errors"
	"github.com/ducminhle1904/risk-engine/internal/monitoring"
	"github.com/ducminhle1904/risk-engine/internal/position"
)

// Decision is the validator's verdict on a proposed trade. A reject carries
// a human-readable reason; no side effects occur on the reject path.
type Decision struct {
	Accepted bool   `json:"accepted"`
	Reason   string `json:"reason,omitempty"`
}

func accept() Decision {
	return Decision{Accepted: true}
}

func reject(reason string) Decision {
	return Decision{Accepted: false, Reason: reason}
}

// ValidateTrade checks a proposed trade against every configured limit and
// the breaker state, short-circuiting on the first failure. The returned
// error is non-nil only for dependency or internal failures; policy rejects
// come back as a Decision with a nil error so callers can tell "rejected by
// policy" from "engine malfunctioned". Either way a failure is always a
// conservative reject, never a crash.
func (e *Engine) ValidateTrade(ctx context.Context, symbol string, side position.Side, size, price float64, leverage int) (decision Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = reject("internal validation error")
			err = engineerrors.NewInternalError("validator", "validate_trade",
				fmt.Errorf("panic: %v", r))
			e.log.LogError("validate_trade panicked", err)
			monitoring.RecordError("internal")
		}
		monitoring.RecordValidation(decision.Accepted)
	}()

	// 1. Size must be positive.
	if size <= 0 {
		return reject("size must be positive"), nil
	}

	// 2. Leverage within the global bounds.
	if leverage < 1 {
		return reject(fmt.Sprintf("leverage %d is below minimum 1", leverage)), nil
	}
	if leverage > e.limits.MaxLeverage {
		return reject(fmt.Sprintf("leverage %d exceeds maximum allowed %d", leverage, e.limits.MaxLeverage)), nil
	}

	// 3. Breaker latch: while stopped every trade is rejected with the
	// stored reason and no further checks run.
	if stopped, reason := e.breaker.Tripped(); stopped {
		return reject(fmt.Sprintf("emergency stop active: %s", reason)), nil
	}

	// 4. Portfolio value from the external provider. A failed query is a
	// dependency error surfaced alongside a conservative reject.
	portfolioValue, perr := e.portfolio.GetPortfolioValue(ctx)
	if perr != nil {
		monitoring.RecordError("portfolio_value")
		return reject("portfolio value unavailable"),
			engineerrors.NewDependencyError("validator", "get_portfolio_value", perr)
	}
	if portfolioValue <= 0 {
		return reject("portfolio value is zero or negative"), nil
	}

	positionValue := size * price * float64(leverage)
	positionShare := positionValue / portfolioValue

	// 5. Position share against the global cap and any symbol override.
	if positionShare > e.limits.MaxPositionShare {
		return reject(fmt.Sprintf("position share %.2f%% exceeds maximum %.2f%%",
			positionShare*100, e.limits.MaxPositionShare*100)), nil
	}
	if limits, ok := e.symbolLimits[symbol]; ok && limits.MaxPositionShare > 0 {
		if positionShare > limits.MaxPositionShare {
			return reject(fmt.Sprintf("position share %.2f%% exceeds %s cap %.2f%%",
				positionShare*100, symbol, limits.MaxPositionShare*100)), nil
		}
	}

	// 6. Per-trade risk budget. This compares the scaled position value
	// against the scaled portfolio value, which reduces to positionValue
	// <= portfolioValue; it is a deliberately loose belt-and-suspenders
	// bound kept as-is from the original engine.
	riskAmount := positionValue * e.limits.MaxPortfolioRiskPerTrade
	if riskAmount > portfolioValue*e.limits.MaxPortfolioRiskPerTrade {
		return reject(fmt.Sprintf("trade risk $%.2f exceeds portfolio risk budget $%.2f",
			riskAmount, portfolioValue*e.limits.MaxPortfolioRiskPerTrade)), nil
	}

	e.mu.RLock()
	dailyPnL := e.dailyPnL
	drawdown := e.metrics.DrawdownRisk
	e.mu.RUnlock()

	// 7. Daily loss limit.
	if dailyPnL < -portfolioValue*e.limits.MaxDailyLossFraction {
		return reject(fmt.Sprintf("daily loss $%.2f exceeds limit $%.2f",
			-dailyPnL, portfolioValue*e.limits.MaxDailyLossFraction)), nil
	}

	// 8. Drawdown limit.
	if drawdown > e.limits.MaxDrawdown {
		return reject(fmt.Sprintf("drawdown %.2f%% exceeds maximum %.2f%%",
			drawdown*100, e.limits.MaxDrawdown*100)), nil
	}

	// 9. Symbol-specific leverage cap, falling back to the global maximum.
	if levCap := e.symbolLeverageCap(symbol); leverage > levCap {
		return reject(fmt.Sprintf("leverage %d exceeds %s cap %d", leverage, symbol, levCap)), nil
	}

	// 10. Correlation heuristic for the candidate symbol.
	if correlation := correlationForCandidate(e.book.Positions(), symbol); correlation > e.limits.MaxCorrelation {
		return reject(fmt.Sprintf("correlation risk %.2f exceeds maximum %.2f",
			correlation, e.limits.MaxCorrelation)), nil
	}

	return accept(), nil
}
