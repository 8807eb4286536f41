package organizing

import (
	"context"
	"sync"
)

// Breaker counts failures across all workers and trips once when the
// count exceeds the threshold. A threshold of zero or less disables it.
type Breaker struct {
	mu        sync.Mutex
	threshold int
	failures  int
	tripped   bool
}

// NewBreaker creates a Breaker with the given threshold.
func NewBreaker(threshold int) *Breaker {
	return &Breaker{threshold: threshold}
}

// Record counts one failure and reports whether this one crossed the
// threshold. It reports true exactly once per crossing; further
// failures while tripped return false.
func (b *Breaker) Record() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.threshold <= 0 || b.tripped || b.failures <= b.threshold {
		return false
	}
	b.tripped = true
	return true
}

// Reset clears the counter and arms the breaker again.
func (b *Breaker) Reset() {
	b.mu.Lock()
	b.failures = 0
	b.tripped = false
	b.mu.Unlock()
}

// Failures returns the current count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// gate parks workers between files while a breaker decision is
// pending. It starts open.
type gate struct {
	mu   sync.Mutex
	open chan struct{}
}

func newGate() *gate {
	g := &gate{open: make(chan struct{})}
	close(g.open)
	return g
}

// Wait blocks until the gate is open or ctx is done. A context that is
// already done wins over an open gate.
func (g *gate) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	g.mu.Lock()
	open := g.open
	g.mu.Unlock()
	select {
	case <-open:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pause closes the gate.
func (g *gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
		g.open = make(chan struct{})
	default:
	}
}

// Resume opens the gate.
func (g *gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.open:
	default:
		close(g.open)
	}
}
