package estimate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/estimate"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
)

func draftResult() *parse.Result {
	return &parse.Result{
		Rooms: []parse.Room{{
			Name: "Кухня",
			Area: 10,
			Items: []parse.Item{{
				Name:     "Монтаж точечного светильника",
				Unit:     catalog.UnitPiece,
				Quantity: 5,
				Price:    decimal.NewFromInt(450),
				// Sum left stale; the service must not trust it.
				Sum: decimal.NewFromInt(999999),
			}},
		}},
		UnknownItems: []parse.UnknownMention{},
		TotalSum:     decimal.NewFromInt(999999),
	}
}

func TestCreateFromParseRecomputesTotals(t *testing.T) {
	t.Parallel()
	svc := estimate.NewService(estimate.NewMemStore(), nil)

	res := draftResult()
	e, err := svc.CreateFromParse(context.Background(), estimate.CreateRequest{
		CompanyID:  1,
		ClientName: "Иванов",
		Result:     res,
	})
	if err != nil {
		t.Fatalf("CreateFromParse: %v", err)
	}

	if e.ID == uuid.Nil {
		t.Error("estimate has no ID")
	}
	if e.Status != estimate.StatusDraft {
		t.Errorf("status = %q, want draft", e.Status)
	}
	if !e.TotalSum.Equal(decimal.NewFromInt(2250)) {
		t.Errorf("total sum = %s, want the recomputed 2250", e.TotalSum)
	}
	if !e.Rooms[0].Items[0].Sum.Equal(decimal.NewFromInt(2250)) {
		t.Errorf("item sum = %s, want 2250", e.Rooms[0].Items[0].Sum)
	}
	if e.TotalArea != 10 {
		t.Errorf("total area = %v, want 10", e.TotalArea)
	}

	// The caller's result must be untouched by the recomputation.
	if !res.Rooms[0].Items[0].Sum.Equal(decimal.NewFromInt(999999)) {
		t.Error("CreateFromParse mutated the caller's parse result")
	}
}

func TestCreateFromParseValidation(t *testing.T) {
	t.Parallel()
	svc := estimate.NewService(estimate.NewMemStore(), nil)
	ctx := context.Background()

	if _, err := svc.CreateFromParse(ctx, estimate.CreateRequest{Result: draftResult()}); err == nil {
		t.Error("missing company id: expected error")
	}
	if _, err := svc.CreateFromParse(ctx, estimate.CreateRequest{CompanyID: 1}); err == nil {
		t.Error("missing result: expected error")
	}
	if _, err := svc.CreateFromParse(ctx, estimate.CreateRequest{
		CompanyID: 1, Result: &parse.Result{},
	}); err == nil {
		t.Error("result without rooms: expected error")
	}
}

func TestGetAndListRoundTrip(t *testing.T) {
	t.Parallel()
	svc := estimate.NewService(estimate.NewMemStore(), nil)
	ctx := context.Background()

	created, err := svc.CreateFromParse(ctx, estimate.CreateRequest{CompanyID: 7, Result: draftResult()})
	if err != nil {
		t.Fatalf("CreateFromParse: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.CompanyID != 7 || len(got.Rooms) != 1 {
		t.Errorf("Get returned %+v", got)
	}

	list, err := svc.ListByCompany(ctx, 7)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	if len(list) != 1 || list[0].ID != created.ID {
		t.Errorf("ListByCompany = %+v", list)
	}

	if _, err := svc.Get(ctx, uuid.New()); !errors.Is(err, estimate.ErrNotFound) {
		t.Errorf("Get(random): got %v, want ErrNotFound", err)
	}
}

func TestUpdateStatus(t *testing.T) {
	t.Parallel()
	svc := estimate.NewService(estimate.NewMemStore(), nil)
	ctx := context.Background()

	created, err := svc.CreateFromParse(ctx, estimate.CreateRequest{CompanyID: 1, Result: draftResult()})
	if err != nil {
		t.Fatalf("CreateFromParse: %v", err)
	}

	if err := svc.UpdateStatus(ctx, created.ID, estimate.StatusSent); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != estimate.StatusSent {
		t.Errorf("status = %q, want sent", got.Status)
	}

	if err := svc.UpdateStatus(ctx, created.ID, "archived"); err == nil {
		t.Error("unknown status: expected error")
	}
	if err := svc.UpdateStatus(ctx, uuid.New(), estimate.StatusSent); !errors.Is(err, estimate.ErrNotFound) {
		t.Errorf("UpdateStatus(random): got %v, want ErrNotFound", err)
	}
}
