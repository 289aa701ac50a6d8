package parse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/resilience"
)

// ChainEntry is one strategy in a Chain, optionally guarded by a circuit
// breaker. A nil Breaker means the strategy is always consulted.
type ChainEntry struct {
	Strategy Strategy
	Breaker  *resilience.Breaker
}

// Chain tries strategies in order and returns the first successful result.
// A failing strategy is logged and skipped; nothing from it leaks into the
// returned result. The deterministic strategy belongs at the end, where its
// inability to fail makes the chain as a whole infallible.
type Chain struct {
	entries []ChainEntry
	log     *slog.Logger
}

// Compile-time interface check.
var _ Strategy = (*Chain)(nil)

// NewChain builds a chain over the given entries. A nil logger disables
// logging.
func NewChain(log *slog.Logger, entries ...ChainEntry) *Chain {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Chain{entries: entries, log: log}
}

// Name implements Strategy.
func (c *Chain) Name() string { return "chain" }

// Parse implements Strategy.
func (c *Chain) Parse(ctx context.Context, transcript string, items []catalog.PriceItem) (*Result, error) {
	var lastErr error
	for _, e := range c.entries {
		if e.Breaker != nil && !e.Breaker.Allow() {
			c.log.WarnContext(ctx, "parse strategy skipped, circuit open",
				"strategy", e.Strategy.Name())
			continue
		}

		res, err := e.Strategy.Parse(ctx, transcript, items)
		if e.Breaker != nil {
			e.Breaker.Record(err)
		}
		if err != nil {
			c.log.WarnContext(ctx, "parse strategy failed, falling through",
				"strategy", e.Strategy.Name(), "error", err)
			lastErr = err
			continue
		}
		return res, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("parse: all strategies failed: %w", lastErr)
	}
	return nil, fmt.Errorf("parse: no strategy available")
}
