package position

import (
	"fmt"
	"sync"
	"time"
)

// Book owns all open positions and the trade history. It is the only
// component allowed to mutate position state.
//
// Mutations take the write lock, so concurrent opens for the same
// (symbol, side) key can never interleave the weighted-average entry
// price update. Readers get consistent snapshots under the read lock.
type Book struct {
	mu        sync.RWMutex
	positions map[Key]*Position
	history   []TradeRecord

	now func() time.Time
}

// NewBook creates an empty position book
func NewBook() *Book {
	return &Book{
		positions: make(map[Key]*Position),
		history:   make([]TradeRecord, 0, 128),
		now:       time.Now,
	}
}

// Open records a fill for (symbol, side). If a position already exists for
// the key, the entry is merged into it with a volume-weighted average price:
//
//	entry = (oldEntry×oldSize + fillPrice×fillSize) / (oldSize + fillSize)
//
// Otherwise a new position is created. Returns the resulting position.
func (b *Book) Open(symbol string, side Side, size, price float64, leverage int) (*Position, error) {
	if size <= 0 {
		return nil, fmt.Errorf("position size must be positive, got %.8f", size)
	}
	if price <= 0 {
		return nil, fmt.Errorf("fill price must be positive, got %.8f", price)
	}
	if leverage < 1 {
		return nil, fmt.Errorf("leverage must be at least 1, got %d", leverage)
	}
	if !side.IsValid() {
		return nil, fmt.Errorf("unknown position side %q", side)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := Key{Symbol: symbol, Side: side}
	ts := b.now()

	if pos, exists := b.positions[key]; exists {
		merged := (pos.EntryPrice*pos.Size + price*size) / (pos.Size + size)
		pos.EntryPrice = merged
		pos.Size += size
		pos.Leverage = leverage
		pos.LastUpdate = ts
		snapshot := *pos
		return &snapshot, nil
	}

	pos := &Position{
		Symbol:     symbol,
		Side:       side,
		Size:       size,
		EntryPrice: price,
		Leverage:   leverage,
		OpenedAt:   ts,
		LastUpdate: ts,
	}
	b.positions[key] = pos
	snapshot := *pos
	return &snapshot, nil
}

// Close realizes PnL for (symbol, side) at exitPrice. A size greater than or
// equal to the open size is a full close: the position is removed and PnL is
// computed on the whole position. A smaller size is a partial close: PnL is
// computed on the closed slice and the remaining size is decremented with the
// entry price unchanged. Every close appends an immutable TradeRecord.
func (b *Book) Close(symbol string, side Side, size, exitPrice float64) (TradeRecord, error) {
	if size <= 0 {
		return TradeRecord{}, fmt.Errorf("close size must be positive, got %.8f", size)
	}
	if exitPrice <= 0 {
		return TradeRecord{}, fmt.Errorf("exit price must be positive, got %.8f", exitPrice)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := Key{Symbol: symbol, Side: side}
	pos, exists := b.positions[key]
	if !exists {
		return TradeRecord{}, fmt.Errorf("no open position for %s", key)
	}

	closedSize := size
	if closedSize >= pos.Size {
		closedSize = pos.Size
	}

	ts := b.now()
	record := TradeRecord{
		Symbol:     symbol,
		Side:       side,
		Size:       closedSize,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exitPrice,
		Leverage:   pos.Leverage,
		PnL:        realizedPnL(side, pos.EntryPrice, exitPrice, closedSize, pos.Leverage),
		OpenedAt:   pos.OpenedAt,
		ClosedAt:   ts,
		Duration:   ts.Sub(pos.OpenedAt),
	}

	if size >= pos.Size {
		delete(b.positions, key)
	} else {
		pos.Size -= size
		pos.LastUpdate = ts
	}

	b.history = append(b.history, record)
	return record, nil
}

// Get returns a copy of the position for (symbol, side), if open
func (b *Book) Get(symbol string, side Side) (Position, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	pos, exists := b.positions[Key{Symbol: symbol, Side: side}]
	if !exists {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns a snapshot of all open positions
func (b *Book) Positions() []Position {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Position, 0, len(b.positions))
	for _, pos := range b.positions {
		out = append(out, *pos)
	}
	return out
}

// Count returns the number of open positions
func (b *Book) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.positions)
}

// History returns a copy of the trade history, oldest first
func (b *Book) History() []TradeRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]TradeRecord, len(b.history))
	copy(out, b.history)
	return out
}

// TradeCount returns the number of recorded closes
func (b *Book) TradeCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.history)
}

// SetClock overrides the book's clock. Used by tests.
func (b *Book) SetClock(now func() time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.now = now
}
