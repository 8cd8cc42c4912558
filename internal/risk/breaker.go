package risk

import (
	"sync"
	"time"
)

// BreakerState represents the state of the emergency-stop breaker
type BreakerState int

const (
	StateNormal BreakerState = iota
	StateStopped
)

// String returns the string representation of the breaker state
func (s BreakerState) String() string {
	switch s {
	case StateNormal:
		return "NORMAL"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Breaker is the 2-state emergency-stop latch. The aggregator trips it
// automatically on a breach; only an explicit operator Reset clears it.
// While stopped, the validator rejects all trades unconditionally.
type Breaker struct {
	mu          sync.RWMutex
	state       BreakerState
	reason      string
	triggeredAt time.Time

	onTrip func(reason string)
}

// NewBreaker creates a breaker in the NORMAL state
func NewBreaker() *Breaker {
	return &Breaker{state: StateNormal}
}

// SetTripCallback sets a callback invoked once per NORMAL→STOPPED
// transition. The callback runs outside the breaker lock.
func (b *Breaker) SetTripCallback(callback func(reason string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onTrip = callback
}

// Trip latches the breaker with the given reason. Returns true if this call
// performed the transition; repeated trips while stopped keep the first
// reason and return false.
func (b *Breaker) Trip(reason string) bool {
	b.mu.Lock()
	if b.state == StateStopped {
		b.mu.Unlock()
		return false
	}
	b.state = StateStopped
	b.reason = reason
	b.triggeredAt = time.Now()
	callback := b.onTrip
	b.mu.Unlock()

	if callback != nil {
		callback(reason)
	}
	return true
}

// Reset returns the breaker to NORMAL. This is the only STOPPED→NORMAL
// transition and is never invoked automatically.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.state = StateNormal
	b.reason = ""
	b.triggeredAt = time.Time{}
}

// Tripped reports whether the breaker is stopped, with the stored reason
func (b *Breaker) Tripped() (bool, string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state == StateStopped, b.reason
}

// State returns the current breaker state
func (b *Breaker) State() BreakerState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// TriggeredAt returns when the breaker last tripped, zero if normal
func (b *Breaker) TriggeredAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.triggeredAt
}
