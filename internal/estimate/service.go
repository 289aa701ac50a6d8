package estimate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
)

// Service creates and reads estimates.
type Service struct {
	store Store
	log   *slog.Logger
}

// NewService wires a Service over the given store. A nil logger disables
// logging.
func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, log: log}
}

// CreateRequest carries everything needed to persist a parse result as a new
// draft estimate.
type CreateRequest struct {
	CompanyID   int64         `json:"company_id"`
	ClientName  string        `json:"client_name"`
	ClientPhone string        `json:"client_phone"`
	Address     string        `json:"address"`
	Result      *parse.Result `json:"result"`
}

// CreateFromParse persists the request's parse result as a draft estimate.
// Sums, subtotals, and totals are recomputed from quantity and unit price
// before persistence, so a tampered or stale result cannot skew the stored
// money.
func (s *Service) CreateFromParse(ctx context.Context, req CreateRequest) (*Estimate, error) {
	if req.CompanyID <= 0 {
		return nil, errors.New("estimate: company id is required")
	}
	if req.Result == nil || len(req.Result.Rooms) == 0 {
		return nil, errors.New("estimate: parse result with at least one room is required")
	}

	recomputed := cloneResult(req.Result)
	parse.Recompute(recomputed)

	e := &Estimate{
		ID:          uuid.New(),
		CompanyID:   req.CompanyID,
		ClientName:  req.ClientName,
		ClientPhone: req.ClientPhone,
		Address:     req.Address,
		Status:      StatusDraft,
		Rooms:       recomputed.Rooms,
		TotalArea:   recomputed.TotalArea,
		TotalSum:    recomputed.TotalSum,
	}
	if err := s.store.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("estimate: create: %w", err)
	}

	s.log.InfoContext(ctx, "estimate created",
		"estimate_id", e.ID, "company_id", e.CompanyID,
		"rooms", len(e.Rooms), "total_sum", e.TotalSum)
	return e, nil
}

// Get retrieves an estimate by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Estimate, error) {
	return s.store.Get(ctx, id)
}

// ListByCompany returns the company's estimates, newest first.
func (s *Service) ListByCompany(ctx context.Context, companyID int64) ([]Estimate, error) {
	return s.store.ListByCompany(ctx, companyID)
}

// UpdateStatus moves an estimate to a new lifecycle state.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	switch status {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
	default:
		return fmt.Errorf("estimate: unknown status %q", status)
	}
	return s.store.UpdateStatus(ctx, id, status)
}

// cloneResult deep-copies a parse result so recomputation cannot mutate the
// caller's value.
func cloneResult(r *parse.Result) *parse.Result {
	out := &parse.Result{
		Rooms:        make([]parse.Room, len(r.Rooms)),
		UnknownItems: append([]parse.UnknownMention(nil), r.UnknownItems...),
		TotalArea:    r.TotalArea,
		TotalSum:     r.TotalSum,
	}
	for i, room := range r.Rooms {
		room.Items = append([]parse.Item(nil), room.Items...)
		out.Rooms[i] = room
	}
	return out
}
