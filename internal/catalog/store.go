package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is returned by store lookups when no price item with the given
// ID exists.
var ErrNotFound = errors.New("catalog: price item not found")

// Store is the persistence interface for price catalog entries.
//
// Implementations must be safe for concurrent use. The parser treats catalog
// data as read-only; mutation methods exist for the management API.
type Store interface {
	// Create inserts a new price item and fills in its ID and timestamps.
	// The item is validated before persistence.
	Create(ctx context.Context, item *PriceItem) error

	// Get retrieves a price item by ID. Returns [ErrNotFound] when absent.
	Get(ctx context.Context, id int64) (*PriceItem, error)

	// Update replaces an existing price item. Returns [ErrNotFound] when the
	// item does not exist.
	Update(ctx context.Context, item *PriceItem) error

	// Deactivate marks a price item inactive so it no longer participates in
	// parsing. Deactivating an absent item returns [ErrNotFound].
	Deactivate(ctx context.Context, id int64) error

	// ListActive returns all active price items belonging to companyID,
	// ordered by name. The result is the parser's matching vocabulary.
	ListActive(ctx context.Context, companyID int64) ([]PriceItem, error)
}
