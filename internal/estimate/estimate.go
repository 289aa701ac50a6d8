// Package estimate persists parse results as customer estimates. Totals are
// always re-derived from quantity and unit price at creation time; nothing
// computed upstream is trusted.
package estimate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
)

// Status is the lifecycle state of an estimate.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Estimate is a stored quote: the client details plus the room and item
// breakdown that came out of a parse.
type Estimate struct {
	ID          uuid.UUID       `json:"id"`
	CompanyID   int64           `json:"company_id"`
	ClientName  string          `json:"client_name"`
	ClientPhone string          `json:"client_phone"`
	Address     string          `json:"address"`
	Status      Status          `json:"status"`
	Rooms       []parse.Room    `json:"rooms"`
	TotalArea   float64         `json:"total_area"`
	TotalSum    decimal.Decimal `json:"total_sum"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ErrNotFound is returned by store lookups when no estimate with the given ID
// exists.
var ErrNotFound = errors.New("estimate: not found")

// Store is the persistence interface for estimates. Implementations must be
// safe for concurrent use.
type Store interface {
	// Create inserts a new estimate and fills in its timestamps.
	Create(ctx context.Context, e *Estimate) error

	// Get retrieves an estimate by ID. Returns [ErrNotFound] when absent.
	Get(ctx context.Context, id uuid.UUID) (*Estimate, error)

	// ListByCompany returns the company's estimates, newest first.
	ListByCompany(ctx context.Context, companyID int64) ([]Estimate, error)

	// UpdateStatus moves an estimate to a new lifecycle state. Returns
	// [ErrNotFound] when the estimate does not exist.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}
