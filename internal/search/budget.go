// Package search implements the strategy family: greedy, heuristic,
// bounded-lookahead DP, beam search, and bounded DFS with pruning and
// spill. Every strategy shares the Budget type below so max_expansions
// and a wall-clock deadline are threaded explicitly through the recursion
// instead of living in package-level mutable state.
package search

import "time"

// Clock is the one-method seam search uses instead of calling time.Now
// directly, so tests can simulate deadline exhaustion deterministically.
// Production code uses RealClock.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by the wall clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Budget bundles the two cooperative cancellation signals: an expansion
// counter and a deadline. Every strategy's main loop checks
// Exhausted() at the top of each iteration and decrements expansions once
// per executed transition via Spend.
type Budget struct {
	MaxExpansions int
	Deadline      time.Time
	Clock         Clock

	spent int
}

// NewBudget returns a Budget with sensible defaults: RealClock and a zero
// Deadline, which Exhausted treats as "no deadline".
func NewBudget(maxExpansions int, deadline time.Time) *Budget {
	return &Budget{MaxExpansions: maxExpansions, Deadline: deadline, Clock: RealClock{}}
}

// Spend records one executed transition against the expansion counter.
func (b *Budget) Spend() {
	b.spent++
}

// Exhausted reports whether either the expansion counter or the deadline
// has been exceeded.
func (b *Budget) Exhausted() bool {
	if b.MaxExpansions > 0 && b.spent >= b.MaxExpansions {
		return true
	}
	if !b.Deadline.IsZero() {
		clock := b.Clock
		if clock == nil {
			clock = RealClock{}
		}
		if !clock.Now().Before(b.Deadline) {
			return true
		}
	}
	return false
}

// Spent returns the number of transitions charged against this budget.
func (b *Budget) Spent() int {
	return b.spent
}
