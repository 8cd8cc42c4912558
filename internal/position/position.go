package position

import (
	"fmt"
	"time"
)

// Side represents the direction of a position
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// String returns the string representation of the side
func (s Side) String() string {
	return string(s)
}

// IsValid reports whether the side is one of the known directions
func (s Side) IsValid() bool {
	return s == SideLong || s == SideShort
}

// Key uniquely identifies a position in the book.
// One position per symbol per side at a time.
type Key struct {
	Symbol string
	Side   Side
}

// String returns a human-readable form of the key
func (k Key) String() string {
	return fmt.Sprintf("%s/%s", k.Symbol, k.Side)
}

// Position represents an open position tracked by the book
type Position struct {
	Symbol     string    `json:"symbol"`
	Side       Side      `json:"side"`
	Size       float64   `json:"size"`
	EntryPrice float64   `json:"entry_price"` // Volume-weighted average across entries
	Leverage   int       `json:"leverage"`
	OpenedAt   time.Time `json:"opened_at"`
	LastUpdate time.Time `json:"last_update"`
}

// Key returns the book key for this position
func (p *Position) Key() Key {
	return Key{Symbol: p.Symbol, Side: p.Side}
}

// Notional returns the leveraged exposure of the position
// Formula: size × entry price × leverage
func (p *Position) Notional() float64 {
	return p.Size * p.EntryPrice * float64(p.Leverage)
}

// TradeRecord represents a completed (fully or partially closed) trade.
// Records are immutable once created and appended to the trade history.
type TradeRecord struct {
	Symbol     string        `json:"symbol"`
	Side       Side          `json:"side"`
	Size       float64       `json:"size"`
	EntryPrice float64       `json:"entry_price"`
	ExitPrice  float64       `json:"exit_price"`
	Leverage   int           `json:"leverage"`
	PnL        float64       `json:"pnl"`
	OpenedAt   time.Time     `json:"opened_at"`
	ClosedAt   time.Time     `json:"closed_at"`
	Duration   time.Duration `json:"duration"`
}

// realizedPnL computes the profit or loss for a closed slice of a position.
// Long: (exit − entry) × size × leverage; short inverts the price difference.
func realizedPnL(side Side, entryPrice, exitPrice, size float64, leverage int) float64 {
	diff := exitPrice - entryPrice
	if side == SideShort {
		diff = -diff
	}
	return diff * size * float64(leverage)
}
