package parse

import (
	"context"
	"strings"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
)

// Deterministic is the pure regex strategy. It is offline, side-effect-free,
// guaranteed to terminate, and never returns an error, which makes it the
// authoritative last entry of every strategy chain.
type Deterministic struct{}

// Compile-time interface check.
var _ Strategy = Deterministic{}

// Name implements Strategy.
func (Deterministic) Name() string { return "deterministic" }

// Parse implements Strategy. All working state lives in this invocation, so
// concurrent calls need no coordination.
func (Deterministic) Parse(_ context.Context, transcript string, items []catalog.PriceItem) (*Result, error) {
	lowered := strings.ToLower(transcript)
	spans := &SpanSet{}

	rooms := extractRooms(lowered, spans)
	matched := matchItems(lowered, buildKeyTable(items), spans)

	return aggregate(rooms, matched), nil
}
