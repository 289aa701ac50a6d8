// Package resilience provides a small circuit breaker used to stop consulting
// a flapping upstream, such as an LLM endpoint that keeps timing out.
package resilience

import (
	"sync"
	"time"
)

// Breaker counts consecutive failures and opens once a threshold is reached.
// While open, Allow reports false until the cooldown elapses; the next call
// is then let through as a trial, and its outcome closes or re-opens the
// breaker. Safe for concurrent use.
type Breaker struct {
	name        string
	maxFailures int
	cooldown    time.Duration

	mu       sync.Mutex
	failures int
	openedAt time.Time
}

// NewBreaker creates a breaker that opens after maxFailures consecutive
// failures and stays open for cooldown. maxFailures below 1 is treated as 1.
func NewBreaker(name string, maxFailures int, cooldown time.Duration) *Breaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &Breaker{name: name, maxFailures: maxFailures, cooldown: cooldown}
}

// Name returns the breaker's identifier for logs and metrics.
func (b *Breaker) Name() string { return b.name }

// Allow reports whether a call may proceed.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failures < b.maxFailures {
		return true
	}
	return time.Since(b.openedAt) >= b.cooldown
}

// Record feeds a call outcome back into the breaker. A nil error closes it;
// a non-nil error counts toward, or extends, the open state.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		b.failures = 0
		b.openedAt = time.Time{}
		return
	}
	b.failures++
	if b.failures >= b.maxFailures {
		b.openedAt = time.Now()
	}
}
