package parallel

import (
	"math"
	"sync"
	"sync/atomic"
)

// Best is the best-so-far record shared by the workers of a search. Offer
// reads, compares and writes under a single lock acquisition, so concurrent
// offers never lose the true optimum.
type Best[T any] struct {
	mu       sync.Mutex
	maximize bool
	before   func(a, b T) bool
	value    T
	score    float64
	found    bool

	// bits mirrors score for lock-free reads by pruning code
	bits atomic.Uint64
}

// NewMax keeps the highest score. Equal scores are resolved with before: a
// value that sorts before the current one replaces it. A nil before keeps the
// first value offered.
func NewMax[T any](before func(a, b T) bool) *Best[T] {
	return newBest(true, before)
}

// NewMin keeps the lowest score, with ties resolved as in NewMax.
func NewMin[T any](before func(a, b T) bool) *Best[T] {
	return newBest(false, before)
}

func newBest[T any](maximize bool, before func(a, b T) bool) *Best[T] {
	b := &Best[T]{maximize: maximize, before: before}
	b.score = b.worst()
	b.bits.Store(math.Float64bits(b.score))
	return b
}

func (b *Best[T]) worst() float64 {
	if b.maximize {
		return math.Inf(-1)
	}
	return math.Inf(1)
}

// Offer proposes v with the given score and reports whether it was kept.
// NaN scores are ignored.
func (b *Best[T]) Offer(score float64, v T) bool {
	if math.IsNaN(score) {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.found && !b.better(score, v, b.score, b.value) {
		return false
	}
	b.value, b.score, b.found = v, score, true
	b.bits.Store(math.Float64bits(score))
	return true
}

func (b *Best[T]) better(score float64, v T, curScore float64, cur T) bool {
	switch {
	case score == curScore:
		return b.before != nil && b.before(v, cur)
	case b.maximize:
		return score > curScore
	default:
		return score < curScore
	}
}

// Score is the current best score without taking the lock. It is -Inf (or
// +Inf for NewMin) until something was offered.
func (b *Best[T]) Score() float64 {
	return math.Float64frombits(b.bits.Load())
}

// Load returns the kept value and its score, and whether anything was kept.
func (b *Best[T]) Load() (T, float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value, b.score, b.found
}

// Local is the unsynchronized per-worker counterpart of Best. Workers fold
// their share of the search into a Local and offer it once.
type Local[T any] struct {
	Value T
	Score float64
	Found bool
}

// Consider keeps v if it beats the current local value under the same rules
// as the shared record.
func (l *Local[T]) Consider(shared *Best[T], score float64, v T) {
	if math.IsNaN(score) {
		return
	}
	if l.Found && !shared.better(score, v, l.Score, l.Value) {
		return
	}
	l.Value, l.Score, l.Found = v, score, true
}

// Merge offers the local result to shared.
func (l *Local[T]) Merge(shared *Best[T]) {
	if l.Found {
		shared.Offer(l.Score, l.Value)
	}
}
