package parse_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/resilience"
)

// stubStrategy fails or succeeds on demand and counts invocations.
type stubStrategy struct {
	name   string
	result *parse.Result
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Parse(context.Context, string, []catalog.PriceItem) (*parse.Result, error) {
	s.calls++
	return s.result, s.err
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	t.Parallel()
	failing := &stubStrategy{name: "llm", err: errors.New("upstream returned 500")}
	chain := parse.NewChain(nil,
		parse.ChainEntry{Strategy: failing},
		parse.ChainEntry{Strategy: parse.Deterministic{}},
	)

	cat := []catalog.PriceItem{
		{ID: 1, Name: "Установка люстры", Unit: catalog.UnitPiece, Synonyms: "люстра", IsActive: true},
	}
	got, err := chain.Parse(context.Background(), "люстра", cat)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want, _ := parse.Deterministic{}.Parse(context.Background(), "люстра", cat)
	if len(got.Rooms) != len(want.Rooms) || len(got.Rooms[0].Items) != len(want.Rooms[0].Items) {
		t.Errorf("fallback result differs from the deterministic strategy's own output")
	}
	if failing.calls != 1 {
		t.Errorf("failing strategy called %d times, want 1", failing.calls)
	}
}

func TestChainReturnsFirstSuccess(t *testing.T) {
	t.Parallel()
	res := &parse.Result{Rooms: []parse.Room{{Name: "Кухня", Area: 9}}}
	first := &stubStrategy{name: "llm", result: res}
	second := &stubStrategy{name: "never"}
	chain := parse.NewChain(nil,
		parse.ChainEntry{Strategy: first},
		parse.ChainEntry{Strategy: second},
	)

	got, err := chain.Parse(context.Background(), "кухня 9", nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got != res {
		t.Error("chain did not return the first strategy's result")
	}
	if second.calls != 0 {
		t.Errorf("later strategy called %d times, want 0", second.calls)
	}
}

func TestChainSkipsOpenBreaker(t *testing.T) {
	t.Parallel()
	failing := &stubStrategy{name: "llm", err: errors.New("timeout")}
	breaker := resilience.NewBreaker("llm", 1, time.Hour)
	chain := parse.NewChain(nil,
		parse.ChainEntry{Strategy: failing, Breaker: breaker},
		parse.ChainEntry{Strategy: parse.Deterministic{}},
	)

	for range 3 {
		if _, err := chain.Parse(context.Background(), "кухня 9", nil); err != nil {
			t.Fatalf("Parse: %v", err)
		}
	}
	if failing.calls != 1 {
		t.Errorf("failing strategy called %d times, want 1 before the circuit opened", failing.calls)
	}
}

func TestChainErrorsWhenAllFail(t *testing.T) {
	t.Parallel()
	failing := &stubStrategy{name: "llm", err: errors.New("boom")}
	chain := parse.NewChain(nil, parse.ChainEntry{Strategy: failing})

	if _, err := chain.Parse(context.Background(), "кухня 9", nil); err == nil {
		t.Fatal("expected an error when every strategy fails")
	}
}
