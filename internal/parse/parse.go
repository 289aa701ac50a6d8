// Package parse turns a free-text measurement transcript into a structured
// estimate draft: detected rooms with areas, catalog-matched line items with
// quantities and sums, and leftover phrases that matched nothing.
//
// Two strategies exist. The LLM strategy (subpackage llmparse) asks a language
// model for the structure and recomputes all money locally. The deterministic
// strategy in this package is pure regex matching over the transcript and is
// always available; a Chain runs the strategies in order and falls through on
// failure, so the deterministic result is the floor every request can rely on.
package parse

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
)

// DefaultRoomName is the room synthesized when the transcript mentions no
// room at all. Every result has at least one room.
const DefaultRoomName = "Основная"

// Item is a single matched line of the estimate draft.
type Item struct {
	// Name is the canonical catalog name, or the literal transcript phrase
	// for items the LLM matched outside the catalog.
	Name string `json:"name"`

	// PriceItemID references the catalog entry the item was matched to.
	// Nil for free-text items.
	PriceItemID *int64 `json:"price_item_id"`

	Unit     catalog.Unit    `json:"unit"`
	Quantity float64         `json:"quantity"`
	Price    decimal.Decimal `json:"price"`

	// Sum is always round(Quantity * Price, 2). It is recomputed whenever
	// the quantity changes and never left stale.
	Sum decimal.Decimal `json:"sum"`
}

// Room groups matched items under a detected physical space.
type Room struct {
	Name     string          `json:"name"`
	Area     float64         `json:"area"`
	Items    []Item          `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// UnknownMention is a transcript phrase that looked like an item but matched
// no catalog entry. Diagnostic only; it carries no quantity or price.
type UnknownMention struct {
	OriginalText string `json:"original_text"`
}

// Result is the parser output. It is immutable once returned.
type Result struct {
	Rooms        []Room           `json:"rooms"`
	UnknownItems []UnknownMention `json:"unknown_items"`
	TotalArea    float64          `json:"total_area"`
	TotalSum     decimal.Decimal  `json:"total_sum"`
}

// Strategy is one way of turning a transcript into a Result. Implementations
// must not mutate the catalog slice.
type Strategy interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Parse produces a result for the transcript against the given active
	// catalog. An error means the strategy produced nothing usable and the
	// caller should try the next one; no partial results are returned.
	Parse(ctx context.Context, transcript string, items []catalog.PriceItem) (*Result, error)
}

// itemSum computes round(quantity * price, 2), the single money rule every
// path in this package and its consumers must agree on.
func itemSum(quantity float64, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromFloat(quantity)).Round(2)
}
