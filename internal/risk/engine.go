package risk

import (
	"context"
	"fmt"
	"sync"
	"time"

	engineerrors "github.com/ducminhle1904/risk-engine/internal/errors"
	"github.com/ducminhle1904/risk-engine/internal/logger"
	"github.com/ducminhle1904/risk-engine/internal/monitoring"
	"github.com/ducminhle1904/risk-engine/internal/notifications"
	"github.com/ducminhle1904/risk-engine/internal/position"
)

// PortfolioValueProvider supplies the current portfolio equity. It is an
// external collaborator; the engine treats any failure as a dependency error
// and degrades to the safest default.
type PortfolioValueProvider interface {
	GetPortfolioValue(ctx context.Context) (float64, error)
}

// TradeSink receives closed trade records for durable storage. Sink failures
// must never prevent the in-memory state transition from completing.
type TradeSink interface {
	StoreTrade(record position.TradeRecord) error
}

// Breaker trip thresholds beyond the configured limits
const (
	breakerLeverageRiskThreshold      = 0.9
	breakerConcentrationRiskThreshold = 0.8
)

// RiskEvent is an entry in the append-only risk-event log, recorded once per
// emergency-stop trip with a portfolio snapshot.
type RiskEvent struct {
	Timestamp      time.Time `json:"timestamp"`
	Reason         string    `json:"reason"`
	PortfolioValue float64   `json:"portfolio_value"`
	DailyPnL       float64   `json:"daily_pnl"`
	Drawdown       float64   `json:"drawdown"`
	Metrics        Metrics   `json:"metrics"`
}

// Summary is the engine's public risk snapshot
type Summary struct {
	EmergencyStop   bool    `json:"emergency_stop"`
	EmergencyReason string  `json:"emergency_reason,omitempty"`
	DailyPnL        float64 `json:"daily_pnl"`
	TotalPnL        float64 `json:"total_pnl"`
	CurrentDrawdown float64 `json:"current_drawdown"`
	PositionsCount  int     `json:"positions_count"`
	TotalTrades     int     `json:"total_trades"`
	MaxEquity       float64 `json:"max_equity"`
	RiskEventsCount int     `json:"risk_events_count"`
	RiskLevel       Level   `json:"risk_level"`
	RiskScore       float64 `json:"risk_score"`
}

// Config bundles the static engine configuration
type Config struct {
	Limits       Limits
	SymbolLimits map[string]SymbolLimits
}

// Engine is the single decision authority for capital allocation. It owns
// the position book, the PnL accumulators, and the emergency-stop breaker;
// callers interact only through its methods and never hold references to the
// underlying state.
type Engine struct {
	limits       Limits
	symbolLimits map[string]SymbolLimits

	book      *position.Book
	breaker   *Breaker
	portfolio PortfolioValueProvider
	log       *logger.Logger

	sink     TradeSink              // optional
	notifier notifications.Notifier // optional

	// mu guards the accumulators, the metrics snapshot, and the event log.
	// Mutations (position updates, closes, breaker reset) take the write
	// lock; validation reads under the read lock.
	mu          sync.RWMutex
	metrics     Metrics
	dailyPnL    float64
	totalPnL    float64
	lastPnLDate string
	maxEquity   float64
	events      []RiskEvent

	now func() time.Time
}

// NewEngine creates a risk engine with the given configuration. A zero
// Limits value falls back to DefaultLimits.
func NewEngine(cfg Config, portfolio PortfolioValueProvider, log *logger.Logger) (*Engine, error) {
	if portfolio == nil {
		return nil, engineerrors.NewConfigurationError("engine", "new", "portfolio value provider is required")
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	limits := cfg.Limits
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	if err := limits.Validate(); err != nil {
		return nil, engineerrors.NewConfigurationError("engine", "new", err.Error())
	}

	symbolLimits := cfg.SymbolLimits
	if symbolLimits == nil {
		symbolLimits = make(map[string]SymbolLimits)
	}

	return &Engine{
		limits:       limits,
		symbolLimits: symbolLimits,
		book:         position.NewBook(),
		breaker:      NewBreaker(),
		portfolio:    portfolio,
		log:          log,
		events:       make([]RiskEvent, 0, 32),
		now:          time.Now,
	}, nil
}

// SetTradeSink attaches the optional persistence sink for closed trades
func (e *Engine) SetTradeSink(sink TradeSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = sink
}

// SetNotifier attaches the optional operator alert channel. It is used only
// for emergency-stop trips.
func (e *Engine) SetNotifier(notifier notifications.Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifier = notifier
}

// UpdatePosition records a fill for (symbol, side), merging into an existing
// position with a volume-weighted average entry price. The risk snapshot is
// recomputed synchronously against the post-mutation position set.
func (e *Engine) UpdatePosition(ctx context.Context, symbol string, side position.Side, size, price float64, leverage int) error {
	pos, err := e.book.Open(symbol, side, size, price, leverage)
	if err != nil {
		return engineerrors.NewValidationError("engine", "update_position", err.Error()).
			WithField("symbol", symbol)
	}

	e.log.Trade("Position %s %s - Size: %.6f @ $%.2f (%dx)",
		side, symbol, pos.Size, pos.EntryPrice, pos.Leverage)
	monitoring.RecordPositionUpdate(symbol, side.String())

	e.refreshRisk(ctx)
	return nil
}

// ClosePosition realizes PnL for (symbol, side) at exitPrice, updates the
// daily and total accumulators, hands the trade record to the persistence
// sink, and recomputes the risk snapshot.
func (e *Engine) ClosePosition(ctx context.Context, symbol string, side position.Side, size, exitPrice float64) error {
	record, err := e.book.Close(symbol, side, size, exitPrice)
	if err != nil {
		return engineerrors.NewValidationError("engine", "close_position", err.Error()).
			WithField("symbol", symbol)
	}

	e.mu.Lock()
	e.rollDailyPnLLocked()
	e.dailyPnL += record.PnL
	e.totalPnL += record.PnL
	sink := e.sink
	e.mu.Unlock()

	e.log.LogTradeClose(symbol, side.String(), record.Size, exitPrice, record.PnL)
	monitoring.RecordTradeClose(symbol, side.String(), record.PnL)

	// Persistence is best effort: a sink failure never rolls back the close.
	if sink != nil {
		if err := sink.StoreTrade(record); err != nil {
			e.log.LogError("trade persistence failed", err)
			monitoring.RecordError("persistence")
		}
	}

	e.refreshRisk(ctx)
	return nil
}

// Metrics returns the last computed risk snapshot
func (e *Engine) Metrics() Metrics {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.metrics
}

// Positions returns a snapshot of the open position set
func (e *Engine) Positions() []position.Position {
	return e.book.Positions()
}

// TradeHistory returns a copy of the closed-trade history
func (e *Engine) TradeHistory() []position.TradeRecord {
	return e.book.History()
}

// RiskEvents returns a copy of the append-only risk-event log
func (e *Engine) RiskEvents() []RiskEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]RiskEvent, len(e.events))
	copy(out, e.events)
	return out
}

// RiskSummary returns the engine's public risk snapshot
func (e *Engine) RiskSummary() Summary {
	stopped, reason := e.breaker.Tripped()

	e.mu.RLock()
	defer e.mu.RUnlock()

	return Summary{
		EmergencyStop:   stopped,
		EmergencyReason: reason,
		DailyPnL:        e.dailyPnL,
		TotalPnL:        e.totalPnL,
		CurrentDrawdown: e.metrics.DrawdownRisk,
		PositionsCount:  e.book.Count(),
		TotalTrades:     e.book.TradeCount(),
		MaxEquity:       e.maxEquity,
		RiskEventsCount: len(e.events),
		RiskLevel:       e.metrics.Level,
		RiskScore:       e.metrics.Score(),
	}
}

// ResetEmergencyStop is the only STOPPED→NORMAL transition. It is an
// explicit operator action and is mutually exclusive with an in-flight
// automatic trip.
func (e *Engine) ResetEmergencyStop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.breaker.Reset()
	e.log.Warning("Emergency stop manually reset; validation resumed")
	monitoring.SetEmergencyStop(false)
}

// refreshRisk recomputes the metrics snapshot from the current position set
// and evaluates the emergency conditions. The position snapshot is taken
// after the triggering mutation, so the aggregator never observes stale
// position state across the trigger boundary.
func (e *Engine) refreshRisk(ctx context.Context) {
	portfolioValue, err := e.portfolio.GetPortfolioValue(ctx)
	if err != nil {
		e.log.LogError("portfolio value query failed during risk refresh", err)
		monitoring.RecordError("portfolio_value")
		return
	}

	positions := e.book.Positions()

	e.mu.Lock()

	if portfolioValue > e.maxEquity {
		e.maxEquity = portfolioValue
	}
	drawdown := 0.0
	if e.maxEquity > 0 {
		drawdown = (e.maxEquity - portfolioValue) / e.maxEquity
		if drawdown < 0 {
			drawdown = 0
		}
	}

	e.metrics = computeMetrics(positions, portfolioValue, drawdown, e.limits.MaxLeverage)
	metrics := e.metrics
	dailyPnL := e.dailyPnL

	monitoring.UpdateRiskGauges(metrics.Score(), drawdown, dailyPnL, len(positions))

	symbols := make(map[string]struct{}, len(positions))
	for _, pos := range positions {
		symbols[pos.Symbol] = struct{}{}
	}

	reason := e.emergencyReasonLocked(metrics, portfolioValue, dailyPnL, len(symbols))
	if reason == "" {
		e.mu.Unlock()
		return
	}

	if !e.breaker.Trip(reason) {
		// Already stopped; keep the first reason.
		e.mu.Unlock()
		return
	}

	event := RiskEvent{
		Timestamp:      e.now(),
		Reason:         reason,
		PortfolioValue: portfolioValue,
		DailyPnL:       dailyPnL,
		Drawdown:       drawdown,
		Metrics:        metrics,
	}
	e.events = append(e.events, event)
	notifier := e.notifier
	e.mu.Unlock()

	e.log.LogEmergencyStop(reason, portfolioValue, dailyPnL, drawdown)
	monitoring.SetEmergencyStop(true)
	monitoring.RecordEmergencyStop()

	if notifier != nil {
		message := fmt.Sprintf("EMERGENCY STOP\n\nReason: %s\nPortfolio: $%.2f\nDaily PnL: $%.2f\nDrawdown: %.2f%%",
			reason, portfolioValue, dailyPnL, drawdown*100)
		if err := notifier.SendAlert("error", message); err != nil {
			e.log.LogError("emergency stop alert failed", err)
			monitoring.RecordError("notification")
		}
	}
}

// emergencyReasonLocked evaluates the trip conditions in order and returns
// the first matching reason, or "" when none fire.
func (e *Engine) emergencyReasonLocked(metrics Metrics, portfolioValue, dailyPnL float64, symbolCount int) string {
	switch {
	case metrics.Level == LevelCritical:
		return fmt.Sprintf("overall risk level CRITICAL (score %.2f)", metrics.Score())
	case metrics.DrawdownRisk > e.limits.MaxDrawdown:
		return fmt.Sprintf("drawdown %.2f%% exceeds limit %.2f%%",
			metrics.DrawdownRisk*100, e.limits.MaxDrawdown*100)
	case portfolioValue > 0 && dailyPnL < -portfolioValue*e.limits.MaxDailyLossFraction:
		return fmt.Sprintf("daily loss $%.2f exceeds limit $%.2f",
			-dailyPnL, portfolioValue*e.limits.MaxDailyLossFraction)
	case metrics.LeverageRisk > breakerLeverageRiskThreshold:
		return fmt.Sprintf("leverage risk %.2f exceeds threshold %.2f",
			metrics.LeverageRisk, breakerLeverageRiskThreshold)
	// A single symbol scores 1.0 on the Herfindahl index by construction,
	// so the concentration condition only applies once a second symbol
	// could have diversified the book.
	case symbolCount > 1 && metrics.ConcentrationRisk > breakerConcentrationRiskThreshold:
		return fmt.Sprintf("concentration risk %.2f exceeds threshold %.2f",
			metrics.ConcentrationRisk, breakerConcentrationRiskThreshold)
	default:
		return ""
	}
}

// rollDailyPnLLocked resets the daily accumulator when the wall-clock date
// has changed since the last recorded close. Total PnL never resets.
func (e *Engine) rollDailyPnLLocked() {
	today := e.now().Format("2006-01-02")
	if e.lastPnLDate != today {
		e.dailyPnL = 0
		e.lastPnLDate = today
	}
}

// symbolLeverageCap returns the symbol's leverage cap, falling back to the
// global maximum when no override is configured
func (e *Engine) symbolLeverageCap(symbol string) int {
	if limits, ok := e.symbolLimits[symbol]; ok && limits.MaxLeverage > 0 {
		return limits.MaxLeverage
	}
	return e.limits.MaxLeverage
}

// SetClock overrides the engine and book clocks. Used by tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.mu.Lock()
	e.now = now
	e.mu.Unlock()
	e.book.SetClock(now)
}
